package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRecentWindow = 60 * time.Second
	DefaultRecentTTL    = 30 * time.Second
)

// RecentOptions configures the "lasts" listings.
type RecentOptions struct {
	Cache  gateway.RecentCache
	Window time.Duration
	TTL    time.Duration
}

// recentListing is a read-through cache over the movements updated within window.
// It only serves listings; single-entity reads always hit the store.
type recentListing[T any] struct {
	cache  gateway.RecentCache
	key    string
	window time.Duration
	ttl    time.Duration
	now    func() time.Time
	load   func(ctx context.Context, since time.Time) ([]T, error)
}

func newRecentListing[T any](key string, opts RecentOptions, load func(context.Context, time.Time) ([]T, error)) *recentListing[T] {
	if opts.Window <= 0 {
		opts.Window = DefaultRecentWindow
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultRecentTTL
	}
	return &recentListing[T]{
		cache:  opts.Cache,
		key:    key,
		window: opts.Window,
		ttl:    opts.TTL,
		now:    time.Now,
		load:   load,
	}
}

func (r *recentListing[T]) Get(ctx context.Context) ([]T, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, r.key)
		if err != nil {
			log.Warn().Err(err).Str("key", r.key).Msg("recent cache read failed")
		} else if raw != nil {
			var items []T
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, nil
			}
			log.Warn().Str("key", r.key).Msg("discarding undecodable recent cache entry")
		}
	}

	items, err := r.load(ctx, r.now().Add(-r.window))
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		raw, err := json.Marshal(items)
		if err == nil {
			err = r.cache.Set(ctx, r.key, raw, r.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", r.key).Msg("recent cache write failed")
		}
	}
	return items, nil
}

func (r *recentListing[T]) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, r.key); err != nil {
		log.Warn().Err(err).Str("key", r.key).Msg("recent cache invalidation failed")
	}
}
