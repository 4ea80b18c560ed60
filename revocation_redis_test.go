package credkit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/credkit/credkit/token"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRevocationStore(t *testing.T) {
	_, client := newTestRedis(t)
	store := newRedisRevocationStore(client, time.Hour)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Fatal("unknown id must not be revoked")
	}

	if err := store.Revoke(ctx, "jti-1", time.Now()); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Fatal("revoked id must be reported revoked")
	}
}

func TestRedisRevocationStoreKeepsFirstTimestamp(t *testing.T) {
	mr, client := newTestRedis(t)
	store := newRedisRevocationStore(client, time.Hour)
	ctx := context.Background()

	first := time.Unix(1_700_000_000, 0)
	second := first.Add(time.Hour)

	if err := store.Revoke(ctx, "jti-1", first); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := store.Revoke(ctx, "jti-1", second); err != nil {
		t.Fatalf("repeated Revoke failed: %v", err)
	}

	stored, err := mr.Get("ckr:jti-1")
	if err != nil {
		t.Fatalf("reading stored value failed: %v", err)
	}
	if stored != strconv.FormatInt(first.Unix(), 10) {
		t.Fatalf("expected first timestamp %d to win, got %s", first.Unix(), stored)
	}
}

func TestRedisRevocationStoreSetsTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := newRedisRevocationStore(client, time.Hour)

	if err := store.Revoke(context.Background(), "jti-1", time.Now()); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if ttl := mr.TTL("ckr:jti-1"); ttl != time.Hour {
		t.Fatalf("expected 1h TTL on revocation record, got %v", ttl)
	}
}

func TestRedisRevocationStoreUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := newRedisRevocationStore(client, time.Hour)
	mr.Close()

	if err := store.Revoke(context.Background(), "jti-1", time.Now()); err == nil {
		t.Fatal("expected error when redis is down")
	}
	if _, err := store.IsRevoked(context.Background(), "jti-1"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestEngineRevocationOverRedis(t *testing.T) {
	_, client := newTestRedis(t)

	engine, err := New().WithConfig(testEngineConfig()).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	ctx := context.Background()

	pair, err := engine.IssueTokenPair(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("IssueTokenPair failed: %v", err)
	}

	if _, err := engine.VerifyToken(ctx, pair.RefreshToken, token.TypeRefresh); err != nil {
		t.Fatalf("VerifyToken before revoke failed: %v", err)
	}

	if _, err := engine.RevokeToken(ctx, pair.RefreshClaims.ID, false); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	if _, err := engine.VerifyToken(ctx, pair.RefreshToken, token.TypeRefresh); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}
