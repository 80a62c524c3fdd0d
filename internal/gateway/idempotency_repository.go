package gateway

import (
	"context"
	"time"
)

// CachedResponse is the replayable part of an HTTP response.
type CachedResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string][]string
}

type IdempotencyRepository interface {
	// Get returns the stored response, or nil when the key is unknown.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	Save(ctx context.Context, key string, response CachedResponse, ttl time.Duration) error

	// Reserve marks key as in flight for at most ttl. It reports false when another
	// request already holds the reservation.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops the in-flight marker; a saved response is left untouched.
	Release(ctx context.Context, key string) error
}
