package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

func TestIdentityCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	cache, err := NewIdentityCache(logger.NewNop(), addr, "test-"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewIdentityCache: %v", err)
	}
	if closer, ok := cache.(interface{ Close() error }); ok {
		t.Cleanup(func() { _ = closer.Close() })
	}
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	id := &services.Identity{OwnerID: uuid.New(), Email: "a@b.c", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	if err := cache.Set(ctx, "k", id, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || got.OwnerID != id.OwnerID || !got.ExpiresAt.Equal(id.ExpiresAt) {
		t.Fatalf("Get: got=%+v ok=%v err=%v", got, ok, err)
	}

	if err := cache.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatalf("entry survived Invalidate")
	}

	if err := cache.Revoke(ctx, "k", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, err := cache.IsRevoked(ctx, "k"); err != nil || !revoked {
		t.Fatalf("IsRevoked: %v err=%v", revoked, err)
	}
}
