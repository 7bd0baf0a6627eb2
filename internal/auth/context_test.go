package auth

import (
	"context"
	"testing"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	identity := Identity{Subject: "ext-1", Role: RoleElevated, JTI: "jti-1", Kind: KindAccess}
	ctx := ContextWithIdentity(context.Background(), identity)

	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("identity not found in context")
	}
	if got.Subject != "ext-1" || got.Role != RoleElevated || got.JTI != "jti-1" {
		t.Fatalf("unexpected identity: %+v", got)
	}

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no identity")
	}
}

func TestTokenContextRoundTrip(t *testing.T) {
	ctx := ContextWithToken(context.Background(), "raw.jwt.token")

	got, ok := TokenFromContext(ctx)
	if !ok || got != "raw.jwt.token" {
		t.Fatalf("token round trip: %q %v", got, ok)
	}

	// Empty tokens are not stored.
	ctx = ContextWithToken(context.Background(), "")
	if _, ok := TokenFromContext(ctx); ok {
		t.Fatal("empty token should not be stored")
	}
}
