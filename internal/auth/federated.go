package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"gatekey.org/internal/ids"
	"gatekey.org/internal/obs"
)

// Profile is the identifying information returned by an external provider
// after a successful authorization-code exchange.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// OAuthProvider exchanges an authorization code for a user profile. The
// implementation owns both provider round-trips (token endpoint, profile
// endpoint) and must bound them with a timeout. A single attempt only;
// retries belong to the transport layer.
type OAuthProvider interface {
	Exchange(ctx context.Context, code string) (Profile, error)
}

// ExchangeFailureKind enumerates the declared failure exits of the
// federated login flow.
type ExchangeFailureKind string

const (
	FailureMissingAuthorizationCode ExchangeFailureKind = "missing_authorization_code"
	FailureProviderExchangeFailed   ExchangeFailureKind = "provider_exchange_failed"
	FailureProviderProfileInvalid   ExchangeFailureKind = "provider_profile_invalid"
)

// ExchangeFailure carries the failure kind plus provider detail.
type ExchangeFailure struct {
	Kind   ExchangeFailureKind
	Detail string
}

// ExchangeResult is the tagged outcome of FederatedLogin: either a token
// pair or a typed failure. Callers inspect the tag instead of matching on
// error values.
type ExchangeResult struct {
	Pair    TokenPair
	Failure *ExchangeFailure
}

// Succeeded reports whether the flow reached token issuance.
func (r ExchangeResult) Succeeded() bool { return r.Failure == nil }

func failure(kind ExchangeFailureKind, detail string) ExchangeResult {
	obs.ProviderFailure(string(kind))
	obs.LoginAttempt("federated", "failure")
	return ExchangeResult{Failure: &ExchangeFailure{Kind: kind, Detail: detail}}
}

// FederatedLogin runs the external-provider exchange flow:
//
//	validate input -> exchange code -> resolve principal -> issue tokens
//
// Each state has a typed failure exit. No token record is written unless
// principal resolution succeeds. Infrastructure faults (store failures
// during resolution or issuance) surface as ordinary errors; the three
// declared failure kinds are domain outcomes.
func (s *Service) FederatedLogin(ctx context.Context, code string) (ExchangeResult, error) {
	if s.provider == nil {
		return ExchangeResult{}, errors.New("auth: no oauth provider configured")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return failure(FailureMissingAuthorizationCode, "authorization code is required"), nil
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, ErrProviderProfile) {
			return failure(FailureProviderProfileInvalid, err.Error()), nil
		}
		return failure(FailureProviderExchangeFailed, err.Error()), nil
	}
	if strings.TrimSpace(profile.Subject) == "" || strings.TrimSpace(profile.Email) == "" {
		return failure(FailureProviderProfileInvalid, "provider profile is incomplete"), nil
	}

	principal, err := s.resolveFederated(ctx, profile)
	if err != nil {
		return ExchangeResult{}, err
	}

	pair, err := s.mintPair(ctx, principal)
	if err != nil {
		return ExchangeResult{}, err
	}
	obs.LoginAttempt("federated", "success")
	return ExchangeResult{Pair: pair}, nil
}

// resolveFederated finds the principal matching the provider subject or
// creates one on first login. An existing principal is reused unchanged.
func (s *Service) resolveFederated(ctx context.Context, profile Profile) (*Principal, error) {
	identities := s.store.Identities(ctx)
	principal, err := identities.FindByProviderSubject(ctx, profile.Subject)
	if err == nil {
		return principal, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	created := &Principal{
		ID:              ids.New(),
		ExternalID:      uuid.NewString(),
		Username:        profile.Email,
		Email:           profile.Email,
		Role:            RoleStandard,
		ProviderSubject: profile.Subject,
		Status:          statusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := identities.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
