package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeProvider struct {
	profile Profile
	err     error
	calls   int
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	p.calls++
	if p.err != nil {
		return Profile{}, p.err
	}
	return p.profile, nil
}

func TestFederatedLoginMissingCode(t *testing.T) {
	clock := newTestClock()
	provider := &fakeProvider{profile: Profile{Subject: "sub-1", Email: "alice@example.com"}}
	svc, store := newTestService(t, clock, WithProvider(provider))

	result, err := svc.FederatedLogin(context.Background(), "")
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}
	if result.Succeeded() {
		t.Fatalf("expected failure for missing code")
	}
	if result.Failure.Kind != FailureMissingAuthorizationCode {
		t.Fatalf("failure kind %q", result.Failure.Kind)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called without a code")
	}
	if store.TokenCount() != 0 {
		t.Fatalf("no tokens may be issued on failure, found %d", store.TokenCount())
	}
}

func TestFederatedLoginExchangeFailed(t *testing.T) {
	clock := newTestClock()
	provider := &fakeProvider{err: errors.New("upstream 502")}
	svc, store := newTestService(t, clock, WithProvider(provider))

	result, err := svc.FederatedLogin(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}
	if result.Succeeded() {
		t.Fatalf("expected failure")
	}
	if result.Failure.Kind != FailureProviderExchangeFailed {
		t.Fatalf("failure kind %q", result.Failure.Kind)
	}
	if store.TokenCount() != 0 || store.PrincipalCount() != 0 {
		t.Fatalf("failed exchange must leave no state behind")
	}
}

func TestFederatedLoginProfileInvalid(t *testing.T) {
	cases := []struct {
		name     string
		provider *fakeProvider
	}{
		{"wrapped sentinel", &fakeProvider{err: fmt.Errorf("userinfo: %w", ErrProviderProfile)}},
		{"missing subject", &fakeProvider{profile: Profile{Email: "alice@example.com"}}},
		{"missing email", &fakeProvider{profile: Profile{Subject: "sub-1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := newTestClock()
			svc, store := newTestService(t, clock, WithProvider(tc.provider))

			result, err := svc.FederatedLogin(context.Background(), "code-1")
			if err != nil {
				t.Fatalf("FederatedLogin: %v", err)
			}
			if result.Succeeded() {
				t.Fatalf("expected failure")
			}
			if result.Failure.Kind != FailureProviderProfileInvalid {
				t.Fatalf("failure kind %q", result.Failure.Kind)
			}
			if store.TokenCount() != 0 {
				t.Fatalf("no tokens may be issued on failure")
			}
		})
	}
}

func TestFederatedLoginFirstVisitCreatesPrincipal(t *testing.T) {
	clock := newTestClock()
	provider := &fakeProvider{profile: Profile{Subject: "sub-1", Email: "alice@example.com", Name: "Alice"}}
	svc, store := newTestService(t, clock, WithProvider(provider))
	ctx := context.Background()

	result, err := svc.FederatedLogin(ctx, "code-1")
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if store.PrincipalCount() != 1 {
		t.Fatalf("one principal should have been created, found %d", store.PrincipalCount())
	}

	identity, err := svc.Validator().Validate(ctx, result.Pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if identity.Role != RoleStandard {
		t.Fatalf("new federated principal role %q, want standard", identity.Role)
	}

	p, err := store.Identities(ctx).FindByProviderSubject(ctx, "sub-1")
	if err != nil {
		t.Fatalf("FindByProviderSubject: %v", err)
	}
	if p.Email != "alice@example.com" || p.Status != statusActive {
		t.Fatalf("created principal %+v", p)
	}
}

func TestFederatedLoginReusesExistingPrincipal(t *testing.T) {
	clock := newTestClock()
	provider := &fakeProvider{profile: Profile{Subject: "sub-1", Email: "alice@example.com"}}
	svc, store := newTestService(t, clock, WithProvider(provider))
	ctx := context.Background()

	first, err := svc.FederatedLogin(ctx, "code-1")
	if err != nil || !first.Succeeded() {
		t.Fatalf("first login: %v %+v", err, first.Failure)
	}
	p, err := store.Identities(ctx).FindByProviderSubject(ctx, "sub-1")
	if err != nil {
		t.Fatalf("FindByProviderSubject: %v", err)
	}
	if err := store.Identities(ctx).UpdateRole(ctx, p.ID, RoleElevated); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	second, err := svc.FederatedLogin(ctx, "code-2")
	if err != nil || !second.Succeeded() {
		t.Fatalf("second login: %v %+v", err, second.Failure)
	}
	if store.PrincipalCount() != 1 {
		t.Fatalf("repeat login must not create another principal, found %d", store.PrincipalCount())
	}

	identity, err := svc.Validator().Validate(ctx, second.Pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if identity.Role != RoleElevated {
		t.Fatalf("repeat login role %q, want the stored role", identity.Role)
	}
}

func TestFederatedLoginWithoutProvider(t *testing.T) {
	clock := newTestClock()
	svc, _ := newTestService(t, clock)

	if _, err := svc.FederatedLogin(context.Background(), "code-1"); err == nil {
		t.Fatalf("expected an error when no provider is configured")
	}
}
