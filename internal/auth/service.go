package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gatekey.org/internal/obs"
)

const defaultIssuerName = "gatekey"

// Service ties the token lifecycle together: local login, refresh,
// revocation and the federated exchange. It holds no per-request state;
// all coordination lives in the backing store.
type Service struct {
	store     Store
	issuer    *Issuer
	validator *Validator
	ledger    *RevocationLedger
	policy    ExpiryPolicy
	provider  OAuthProvider
	now       func() time.Time

	issuerName string
	secret     []byte
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithIssuerName overrides the token issuer claim.
func WithIssuerName(name string) ServiceOption {
	return func(s *Service) error {
		if strings.TrimSpace(name) != "" {
			s.issuerName = strings.TrimSpace(name)
		}
		return nil
	}
}

// WithExpiryPolicy overrides the TTL tiers.
func WithExpiryPolicy(policy ExpiryPolicy) ServiceOption {
	return func(s *Service) error {
		if policy.StandardAccessTTL <= 0 || policy.StandardRefreshTTL <= 0 ||
			policy.ElevatedAccessTTL <= 0 || policy.ElevatedRefreshTTL <= 0 {
			return errors.New("auth: all expiry tiers must be positive")
		}
		s.policy = policy
		return nil
	}
}

// WithProvider wires the external OAuth provider used by FederatedLogin.
func WithProvider(p OAuthProvider) ServiceOption {
	return func(s *Service) error {
		s.provider = p
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs the auth service with optional configuration.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &Service{
		store:      store,
		policy:     DefaultExpiryPolicy(),
		now:        time.Now,
		issuerName: defaultIssuerName,
		secret:     []byte(secret),
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}

	var err error
	svc.issuer, err = NewIssuer(svc.secret, svc.issuerName, store, svc.now)
	if err != nil {
		return nil, err
	}
	svc.ledger = NewRevocationLedger(store)
	svc.validator, err = NewValidator(svc.secret, svc.issuerName, svc.ledger, svc.now)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Validator exposes the token validator for request middleware.
func (s *Service) Validator() *Validator { return s.validator }

// Ledger exposes the revocation ledger.
func (s *Service) Ledger() *RevocationLedger { return s.ledger }

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Login authenticates a username/password pair and issues fresh access and
// refresh tokens. A missing user and a wrong password both return
// ErrBadCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		obs.LoginAttempt("local", "failure")
		return TokenPair{}, ErrBadCredentials
	}
	principal, err := s.store.Identities(ctx).FindByUsername(ctx, username)
	if err != nil {
		obs.LoginAttempt("local", "failure")
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrBadCredentials
		}
		return TokenPair{}, err
	}
	if principal.Status != statusActive {
		obs.LoginAttempt("local", "failure")
		return TokenPair{}, ErrBadCredentials
	}
	if err := VerifyPassword(principal.PasswordHash, password); err != nil {
		obs.LoginAttempt("local", "failure")
		return TokenPair{}, ErrBadCredentials
	}

	pair, err := s.mintPair(ctx, principal)
	if err != nil {
		return TokenPair{}, err
	}
	obs.LoginAttempt("local", "success")
	return pair, nil
}

// Refresh validates a refresh token and issues one new access token whose
// claims reflect the principal's current state, not the snapshot inside the
// refresh token. The refresh token itself is neither rotated nor revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (SignedToken, error) {
	identity, err := s.validator.Validate(ctx, refreshToken, KindRefresh)
	if err != nil {
		return SignedToken{}, err
	}
	principal, err := s.store.Identities(ctx).FindByExternalID(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SignedToken{}, ErrTokenRevoked
		}
		return SignedToken{}, err
	}
	claims := BuildClaims(principal)
	return s.issuer.Issue(ctx, principal.ID, KindAccess, s.policy.AccessTTL(principal.Role), claims)
}

// Revoke validates the presented token and records its own jti as revoked.
// An already-invalid token cannot revoke anything; this keeps stale tokens
// from hammering the ledger. Logout is two Revoke calls, one per kind.
func (s *Service) Revoke(ctx context.Context, raw string, kind TokenKind) error {
	identity, err := s.validator.Validate(ctx, raw, kind)
	if err != nil {
		return err
	}
	return s.ledger.RecordRevoked(ctx, identity.JTI)
}

func (s *Service) mintPair(ctx context.Context, principal *Principal) (TokenPair, error) {
	claims := BuildClaims(principal)
	access, err := s.issuer.Issue(ctx, principal.ID, KindAccess, s.policy.AccessTTL(principal.Role), claims)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.Issue(ctx, principal.ID, KindRefresh, s.policy.RefreshTTL(principal.Role), claims)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
