// README: Board cache tests against Redis (version-token invalidation).
package ride

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func setupTestCache(t *testing.T) *BoardCache {
	t.Helper()

	addr := os.Getenv("TAXIBOARD_REDIS_ADDR")
	if addr == "" {
		t.Skip("TAXIBOARD_REDIS_ADDR not set; skipping Redis-backed tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	t.Cleanup(func() { client.Close() })

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush test db: %v", err)
	}
	return NewBoardCache(client, time.Minute)
}

func TestBoardCacheRoundTrip(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	version, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != 0 {
		t.Fatalf("fresh cache version: expected 0, got %d", version)
	}

	if _, hit, err := cache.Get(ctx, "2026-03-14", version); err != nil || hit {
		t.Fatalf("cold get: hit=%v err=%v", hit, err)
	}

	payload := []byte(`[{"id":"r1"}]`)
	if err := cache.Put(ctx, "2026-03-14", version, payload); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, hit, err := cache.Get(ctx, "2026-03-14", version)
	if err != nil || !hit {
		t.Fatalf("warm get: hit=%v err=%v", hit, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %s", got)
	}
}

// TestBoardCacheBumpInvalidates: a write bumps the version token, so reads
// at the new version never see entries cached before the write.
func TestBoardCacheBumpInvalidates(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	before, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if err := cache.Put(ctx, "2026-03-14", before, []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	after, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("version after bump: %v", err)
	}
	if after <= before {
		t.Fatalf("version must advance: %d -> %d", before, after)
	}

	if _, hit, err := cache.Get(ctx, "2026-03-14", after); err != nil || hit {
		t.Fatalf("stale entry served after bump: hit=%v err=%v", hit, err)
	}
}
