package gateway

import (
	"context"
	"time"
)

// RecentCache stores the serialized "recently touched" listings.
// Get returns (nil, nil) on a miss.
type RecentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
