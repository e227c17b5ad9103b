package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisRevocationStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisRevocationStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestRedisRevocationStore(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if revoked {
		t.Fatal("fresh token should not be revoked")
	}

	if err := store.Revoke(ctx, "token-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if !revoked {
		t.Fatal("token should be revoked")
	}

	s.FastForward(2 * time.Hour)

	revoked, err = store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("IsRevoked() error = %v", err)
	}
	if revoked {
		t.Error("revocation should expire with the token")
	}
}

func TestRedisRevocationStoreSkipsExpiredTokens(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if s.Exists("revoked:old") {
		t.Error("already expired token should not be stored")
	}
}

func TestNewRedisRevocationStoreBadURL(t *testing.T) {
	if _, err := NewRedisRevocationStore("not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	if err := store.Revoke(ctx, "a", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.Revoke(ctx, "b", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	if ok, _ := store.IsRevoked(ctx, "a"); !ok {
		t.Error("a should be revoked")
	}
	if ok, _ := store.IsRevoked(ctx, "b"); ok {
		t.Error("b expired before revocation and should not be tracked")
	}
	if ok, _ := store.IsRevoked(ctx, "c"); ok {
		t.Error("c was never revoked")
	}
}
