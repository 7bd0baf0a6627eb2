package auth

import (
	"context"
	"errors"

	"gatekey.org/internal/obs"
)

// RevocationLedger is the durable record of revoked token identifiers. It is
// consulted on every authenticated request and fails closed: any ambiguity
// about a jti (unknown id, store error) is treated as revoked.
type RevocationLedger struct {
	store Store
}

// NewRevocationLedger constructs a ledger over the given store.
func NewRevocationLedger(store Store) *RevocationLedger {
	return &RevocationLedger{store: store}
}

// RecordRevoked marks the jti revoked. Revoking an already-revoked or
// unknown jti is a no-op success.
func (l *RevocationLedger) RecordRevoked(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	rec, err := l.store.Tokens(ctx).Find(ctx, jti)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.Revoked {
		return nil
	}
	if err := l.store.Tokens(ctx).MarkRevoked(ctx, jti); err != nil {
		return err
	}
	obs.TokenRevoked(string(rec.Kind))
	return nil
}

// IsRevoked reports whether the jti has been revoked. Unknown identifiers
// and lookup failures count as revoked.
func (l *RevocationLedger) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return true
	}
	rec, err := l.store.Tokens(ctx).Find(ctx, jti)
	if err != nil {
		return true
	}
	return rec.Revoked
}
