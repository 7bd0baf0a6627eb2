package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newGoogleTestServers(t *testing.T, tokenStatus int, tokenBody string, infoStatus int, infoBody string) (token, info *httptest.Server) {
	t.Helper()
	token = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint method %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type %q", got)
		}
		if got := r.PostForm.Get("code"); got == "" {
			t.Errorf("missing code")
		}
		w.WriteHeader(tokenStatus)
		w.Write([]byte(tokenBody))
	}))
	t.Cleanup(token.Close)

	info = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("authorization header %q", got)
		}
		w.WriteHeader(infoStatus)
		w.Write([]byte(infoBody))
	}))
	t.Cleanup(info.Close)
	return token, info
}

func newGoogleTestProvider(token, info *httptest.Server) *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://app.example.com/callback",
		TokenURL:     token.URL,
		UserInfoURL:  info.URL,
	})
}

func TestGoogleExchangeSuccess(t *testing.T) {
	token, info := newGoogleTestServers(t,
		http.StatusOK, `{"access_token":"ya29.x","token_type":"Bearer","expires_in":3600}`,
		http.StatusOK, `{"sub":"10987","email":"alice@example.com","name":"Alice"}`)
	provider := newGoogleTestProvider(token, info)

	profile, err := provider.Exchange(context.Background(), "4/0AX4code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if profile.Subject != "10987" {
		t.Fatalf("subject %q", profile.Subject)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("email %q", profile.Email)
	}
	if profile.Name != "Alice" {
		t.Fatalf("name %q", profile.Name)
	}
}

func TestGoogleExchangeTokenEndpointError(t *testing.T) {
	token, info := newGoogleTestServers(t,
		http.StatusBadRequest, `{"error":"invalid_grant"}`,
		http.StatusOK, `{}`)
	provider := newGoogleTestProvider(token, info)

	_, err := provider.Exchange(context.Background(), "stale-code")
	if err == nil {
		t.Fatalf("expected error for rejected code")
	}
	if errors.Is(err, ErrProviderProfile) {
		t.Fatalf("token endpoint failure must not look like a profile failure: %v", err)
	}
}

func TestGoogleExchangeEmptyAccessToken(t *testing.T) {
	token, info := newGoogleTestServers(t,
		http.StatusOK, `{"token_type":"Bearer"}`,
		http.StatusOK, `{}`)
	provider := newGoogleTestProvider(token, info)

	if _, err := provider.Exchange(context.Background(), "code"); err == nil {
		t.Fatalf("expected error for empty access token")
	}
}

func TestGoogleExchangeProfileFailures(t *testing.T) {
	cases := []struct {
		name       string
		infoStatus int
		infoBody   string
	}{
		{"endpoint error", http.StatusForbidden, `{"error":"forbidden"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"missing subject", http.StatusOK, `{"email":"alice@example.com"}`},
		{"missing email", http.StatusOK, `{"sub":"10987"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, info := newGoogleTestServers(t,
				http.StatusOK, `{"access_token":"ya29.x"}`,
				tc.infoStatus, tc.infoBody)
			provider := newGoogleTestProvider(token, info)

			_, err := provider.Exchange(context.Background(), "code")
			if !errors.Is(err, ErrProviderProfile) {
				t.Fatalf("got %v, want ErrProviderProfile", err)
			}
		})
	}
}

func TestGoogleLoginURL(t *testing.T) {
	provider := NewGoogleProvider(GoogleConfig{
		ClientID:    "client-id",
		RedirectURL: "https://app.example.com/callback",
	})

	raw := provider.LoginURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse login url: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Fatalf("client_id %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/callback" {
		t.Fatalf("redirect_uri %q", q.Get("redirect_uri"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type %q", q.Get("response_type"))
	}
	if q.Get("state") != "state-123" {
		t.Fatalf("state %q", q.Get("state"))
	}
}
