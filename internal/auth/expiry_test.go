package auth

import (
	"testing"
	"time"
)

func TestExpiryPolicyTiers(t *testing.T) {
	policy := DefaultExpiryPolicy()

	if policy.AccessTTL(RoleElevated) == policy.AccessTTL(RoleStandard) {
		t.Fatalf("elevated and standard access TTLs must differ")
	}
	if policy.RefreshTTL(RoleElevated) == policy.RefreshTTL(RoleStandard) {
		t.Fatalf("elevated and standard refresh TTLs must differ")
	}

	// Stable across calls.
	for i := 0; i < 3; i++ {
		if policy.AccessTTL(RoleStandard) != defaultStandardAccessTTL {
			t.Fatalf("standard access TTL changed between calls")
		}
		if policy.RefreshTTL(RoleElevated) != defaultElevatedRefreshTTL {
			t.Fatalf("elevated refresh TTL changed between calls")
		}
	}
}

func TestExpiryPolicyUnknownRoleFallsBackToStandard(t *testing.T) {
	policy := ExpiryPolicy{
		StandardAccessTTL:  10 * time.Minute,
		StandardRefreshTTL: 24 * time.Hour,
		ElevatedAccessTTL:  time.Minute,
		ElevatedRefreshTTL: time.Hour,
	}

	for _, role := range []Role{"", "auditor", "machine", RoleStandard} {
		if got := policy.AccessTTL(role); got != 10*time.Minute {
			t.Fatalf("AccessTTL(%q)=%v, want standard tier", role, got)
		}
		if got := policy.RefreshTTL(role); got != 24*time.Hour {
			t.Fatalf("RefreshTTL(%q)=%v, want standard tier", role, got)
		}
	}
}
