package httpapi

import (
	"context"
	"net/http"
	"testing"

	"gatekey.org/internal/auth"
)

func TestWithAuthRejectsMissingToken(t *testing.T) {
	api, _ := newTestAPI(t)
	h := api.Handler()

	rr := doJSON(t, h, http.MethodGet, "/v1/me", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
	var resp map[string]any
	decodeBody(t, rr, &resp)
	if resp["error"] != "missing bearer token" {
		t.Fatalf("error %v", resp["error"])
	}
}

func TestWithAuthRejectsGarbageToken(t *testing.T) {
	api, _ := newTestAPI(t)
	h := api.Handler()

	rr := doJSON(t, h, http.MethodGet, "/v1/me", "", "not-a-jwt")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
	var resp map[string]any
	decodeBody(t, rr, &resp)
	if resp["error"] != "invalid token" {
		t.Fatalf("error %v", resp["error"])
	}
}

func TestWithAuthRejectsForgedSignature(t *testing.T) {
	api, store := newTestAPI(t)
	seedUser(t, store, "alice", "p4ssw0rd", auth.RoleStandard)
	h := api.Handler()

	// Tokens signed under a different secret must not validate.
	otherStore := auth.NewMemStore()
	other, err := auth.NewService(otherStore, "other-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	seedUser(t, otherStore, "alice", "p4ssw0rd", auth.RoleStandard)
	pair, err := other.Login(context.Background(), "alice", "p4ssw0rd")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rr := doJSON(t, h, http.MethodGet, "/v1/me", "", pair.AccessToken)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestPublicPathsSkipAuth(t *testing.T) {
	api, _ := newTestAPI(t)
	h := api.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/metrics"} {
		rr := doJSON(t, h, http.MethodGet, path, "", "")
		if rr.Code == http.StatusUnauthorized {
			t.Fatalf("%s requires auth", path)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"  Bearer abc  ", "abc", true},
		{"", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: %v", tc.header, err)
			}
			if got != tc.want {
				t.Fatalf("%q: got %q, want %q", tc.header, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q: expected error, got %q", tc.header, got)
		}
	}
}
