package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validator verifies presented tokens: signature, expiry, kind marker and
// the revocation ledger, in that order.
type Validator struct {
	secret []byte
	issuer string
	ledger *RevocationLedger
	now    func() time.Time
}

// NewValidator constructs a Validator sharing the issuer's signing context.
func NewValidator(secret []byte, issuer string, ledger *RevocationLedger, now func() time.Time) (*Validator, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	if ledger == nil {
		return nil, errors.New("auth: revocation ledger is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{secret: secret, issuer: issuer, ledger: ledger, now: now}, nil
}

// Validate parses and verifies a raw token of the expected kind and returns
// the identity and claims snapshot embedded in it. Failures are one of
// ErrTokenMalformed, ErrSignatureInvalid, ErrTokenExpired, ErrTokenRevoked.
func (v *Validator) Validate(ctx context.Context, raw string, expected TokenKind) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrSignatureInvalid
		default:
			return Identity{}, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrTokenMalformed
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return Identity{}, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return Identity{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return Identity{}, ErrTokenMalformed
	}
	if TokenKind(claims.Kind) != expected {
		return Identity{}, ErrTokenMalformed
	}

	if v.ledger.IsRevoked(ctx, claims.ID) {
		return Identity{}, ErrTokenRevoked
	}

	return Identity{
		Subject:   claims.Subject,
		Role:      ParseRole(claims.Role),
		Resources: claims.Resources,
		JTI:       claims.ID,
		Kind:      TokenKind(claims.Kind),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
