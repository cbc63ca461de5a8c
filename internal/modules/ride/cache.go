// README: Version-token board cache backed by Redis.
package ride

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const boardVersionKey = "board:version"

// BoardCache caches rendered day boards keyed by an explicit version token.
// Every ride write bumps the token, so a read can never be served from an
// entry written before the latest mutation. The TTL is hygiene only; it
// plays no part in correctness.
type BoardCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewBoardCache(redis *redis.Client, ttl time.Duration) *BoardCache {
	return &BoardCache{redis: redis, ttl: ttl}
}

// Version returns the current board version token.
func (c *BoardCache) Version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, boardVersionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// Bump invalidates every cached board by advancing the version token.
func (c *BoardCache) Bump(ctx context.Context) error {
	return c.redis.Incr(ctx, boardVersionKey).Err()
}

func (c *BoardCache) Get(ctx context.Context, day string, version int64) ([]byte, bool, error) {
	val, err := c.redis.Get(ctx, boardKey(day, version)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *BoardCache) Put(ctx context.Context, day string, version int64, payload []byte) error {
	return c.redis.Set(ctx, boardKey(day, version), payload, c.ttl).Err()
}

func boardKey(day string, version int64) string {
	return fmt.Sprintf("board:%s:%d", day, version)
}
