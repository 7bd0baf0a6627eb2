package auth

import "context"

// Store describes the persistence operations required by the auth subsystem.
type Store interface {
	Identities(ctx context.Context) IdentityStore
	Tokens(ctx context.Context) TokenStore
}

// IdentityStore manages principal records.
type IdentityStore interface {
	Create(ctx context.Context, p *Principal) error
	Find(ctx context.Context, id string) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByExternalID(ctx context.Context, externalID string) (*Principal, error)
	FindByProviderSubject(ctx context.Context, subject string) (*Principal, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdateResources(ctx context.Context, id string, resources []string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// TokenStore manages the token record ledger. Only single-key operations
// are required; revocation consistency relies on the store's native
// point-write atomicity.
type TokenStore interface {
	Insert(ctx context.Context, rec *TokenRecord) error
	Find(ctx context.Context, jti string) (*TokenRecord, error)
	MarkRevoked(ctx context.Context, jti string) error
}
