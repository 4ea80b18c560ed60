package token

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked = (%v, %v), want (false, nil)", revoked, err)
	}

	first := time.Unix(1_700_000_000, 0)
	if err := store.Revoke(ctx, "jti-1", first); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked = (%v, %v), want (true, nil)", revoked, err)
	}

	// Revoking again keeps the original timestamp.
	if err := store.Revoke(ctx, "jti-1", first.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	at, ok := store.RevokedAt("jti-1")
	if !ok || !at.Equal(first) {
		t.Fatalf("RevokedAt = (%v, %v), want first timestamp", at, ok)
	}
}

func TestFamilyID(t *testing.T) {
	if got := FamilyID("abc"); got != "fam:abc" {
		t.Fatalf("FamilyID = %q, want fam:abc", got)
	}
}
