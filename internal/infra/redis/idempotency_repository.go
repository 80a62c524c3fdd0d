package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix     = "idempotency:"
	idempotencyLockPrefix = "idempotency-lock:"
)

// IdempotencyRepository stores replayable HTTP responses keyed by Idempotency-Key.
type IdempotencyRepository struct {
	client redis.Cmdable
}

var _ gateway.IdempotencyRepository = (*IdempotencyRepository)(nil)

func NewIdempotencyRepository(client redis.Cmdable) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*gateway.CachedResponse, error) {
	val, err := r.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var resp gateway.CachedResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return &resp, nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, key string, response gateway.CachedResponse, ttl time.Duration) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := r.client.Set(ctx, idempotencyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}

// Reserve uses SET NX so only one request per key runs the handler at a time.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyLockPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, idempotencyLockPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
