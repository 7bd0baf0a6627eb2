package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gatekey.org/internal/ids"
	"gatekey.org/internal/obs"
)

// tokenClaims is the wire shape of every issued token. Access and refresh
// tokens share it, differing by TTL and the kind marker.
type tokenClaims struct {
	Role      string   `json:"role"`
	Resources []string `json:"resources,omitempty"`
	Kind      string   `json:"kind"`
	jwt.RegisteredClaims
}

// SignedToken is the result of a single issuance.
type SignedToken struct {
	Token     string
	JTI       string
	Kind      TokenKind
	ExpiresAt time.Time
}

// Issuer creates signed tokens and records each one in the token ledger.
type Issuer struct {
	secret []byte
	issuer string
	store  Store
	now    func() time.Time
}

// NewIssuer constructs an Issuer signing with HS256.
func NewIssuer(secret []byte, issuer string, store Store, now func() time.Time) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	if store == nil {
		return nil, errors.New("auth: token store is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: secret, issuer: issuer, store: store, now: now}, nil
}

// Issue signs a token for the principal and durably writes its TokenRecord
// before returning. A token whose record failed to persist is never handed
// out: it would be unrevocable.
func (i *Issuer) Issue(ctx context.Context, principalID string, kind TokenKind, ttl time.Duration, claims Claims) (SignedToken, error) {
	if ttl <= 0 {
		return SignedToken{}, fmt.Errorf("%w: ttl must be greater than zero", ErrInvalidInput)
	}
	now := i.now().UTC()
	jti := ids.New()
	expiresAt := now.Add(ttl)

	payload := tokenClaims{
		Role:      string(claims.Role),
		Resources: claims.Resources,
		Kind:      string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return SignedToken{}, fmt.Errorf("sign token: %w", err)
	}

	rec := &TokenRecord{
		JTI:         jti,
		Kind:        kind,
		PrincipalID: principalID,
		IssuedAt:    now,
		ExpiresAt:   expiresAt,
	}
	if err := i.store.Tokens(ctx).Insert(ctx, rec); err != nil {
		return SignedToken{}, fmt.Errorf("record token: %w", err)
	}

	obs.TokenIssued(string(kind))
	return SignedToken{Token: signed, JTI: jti, Kind: kind, ExpiresAt: expiresAt}, nil
}
