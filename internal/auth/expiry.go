package auth

import "time"

const (
	defaultStandardAccessTTL  = 15 * time.Minute
	defaultStandardRefreshTTL = 30 * 24 * time.Hour
	defaultElevatedAccessTTL  = 5 * time.Minute
	defaultElevatedRefreshTTL = 12 * time.Hour
)

// ExpiryPolicy maps a principal's role to token lifetimes. Exactly two tiers
// exist: elevated and standard. Roles the policy does not recognize fall
// back to the standard tier so new roles can be added without touching this
// code.
type ExpiryPolicy struct {
	StandardAccessTTL  time.Duration
	StandardRefreshTTL time.Duration
	ElevatedAccessTTL  time.Duration
	ElevatedRefreshTTL time.Duration
}

// DefaultExpiryPolicy returns the built-in TTL tiers.
func DefaultExpiryPolicy() ExpiryPolicy {
	return ExpiryPolicy{
		StandardAccessTTL:  defaultStandardAccessTTL,
		StandardRefreshTTL: defaultStandardRefreshTTL,
		ElevatedAccessTTL:  defaultElevatedAccessTTL,
		ElevatedRefreshTTL: defaultElevatedRefreshTTL,
	}
}

// AccessTTL returns the access token lifetime for the role.
func (p ExpiryPolicy) AccessTTL(role Role) time.Duration {
	if role == RoleElevated {
		return p.ElevatedAccessTTL
	}
	return p.StandardAccessTTL
}

// RefreshTTL returns the refresh token lifetime for the role.
func (p ExpiryPolicy) RefreshTTL(role Role) time.Duration {
	if role == RoleElevated {
		return p.ElevatedRefreshTTL
	}
	return p.StandardRefreshTTL
}
