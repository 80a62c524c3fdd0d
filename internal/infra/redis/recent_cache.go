package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/redis/go-redis/v9"
)

const recentPrefix = "ledger:"

// RecentCache keeps the serialized "lasts" listings.
type RecentCache struct {
	client redis.Cmdable
}

var _ gateway.RecentCache = (*RecentCache)(nil)

func NewRecentCache(client redis.Cmdable) *RecentCache {
	return &RecentCache{client: client}
}

func (c *RecentCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, recentPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, nil
}

func (c *RecentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, recentPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (c *RecentCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, recentPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}
