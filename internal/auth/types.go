package auth

import (
	"strings"
	"time"
)

// Role classifies a principal for TTL tiering and authorization.
type Role string

const (
	RoleStandard Role = "standard"
	RoleElevated Role = "elevated"
)

// ParseRole normalizes a stored role string. Unknown values are kept as-is;
// the expiry policy maps anything it does not recognize to the standard tier.
func ParseRole(s string) Role {
	return Role(strings.TrimSpace(strings.ToLower(s)))
}

const (
	statusActive   = "active"
	statusDisabled = "disabled"
)

// Principal represents an authenticated entity.
//
// ID is the internal storage key. ExternalID is the opaque identifier
// embedded in tokens; it is assigned once and never reassigned, even after
// the principal is deleted.
type Principal struct {
	ID              string
	ExternalID      string
	Username        string
	Email           string
	PasswordHash    string
	Role            Role
	Resources       []string
	ProviderSubject string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TokenKind distinguishes access from refresh tokens. The kind is embedded
// in the token payload so a refresh token cannot be replayed where an
// access token is expected.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenRecord is the durable ledger entry written for every issued token.
// Revoked only ever transitions false -> true. Access and refresh records
// from the same login are independent entries with independent revocation.
type TokenRecord struct {
	JTI         string
	Kind        TokenKind
	PrincipalID string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Revoked     bool
}

// Claims is the authorization snapshot embedded into a token at issuance.
// It is computed from the principal and never updated afterwards: a role
// change does not alter already-issued tokens, only revocation does.
type Claims struct {
	Subject   string
	Role      Role
	Resources []string
}

// Identity is the verified output of token validation.
type Identity struct {
	Subject   string
	Role      Role
	Resources []string
	JTI       string
	Kind      TokenKind
	ExpiresAt time.Time
}
