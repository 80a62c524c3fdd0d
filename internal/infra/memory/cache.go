package memory

import (
	"context"
	"sync"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
)

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a TTL key/value map serving as recent cache and notification log.
type Cache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

var (
	_ gateway.RecentCache     = (*Cache)(nil)
	_ gateway.NotificationLog = (*Cache)(nil)
)

func NewCache() *Cache {
	return &Cache{items: make(map[string]cacheItem), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return nil, nil
	}
	return item.value, nil
}

// Set stores value; a non-positive ttl never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *Cache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *Cache) WasSent(ctx context.Context, key string) (bool, error) {
	v, err := c.Get(ctx, "notified:"+key)
	return v != nil, err
}

func (c *Cache) MarkSent(ctx context.Context, key string) error {
	return c.Set(ctx, "notified:"+key, []byte("1"), 0)
}

// IdempotencyStore keeps replayable responses in process.
type IdempotencyStore struct {
	mu        sync.Mutex
	responses map[string]idempotentResponse
	inFlight  map[string]time.Time
	now       func() time.Time
}

type idempotentResponse struct {
	response  gateway.CachedResponse
	expiresAt time.Time
}

var _ gateway.IdempotencyRepository = (*IdempotencyStore)(nil)

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		responses: make(map[string]idempotentResponse),
		inFlight:  make(map[string]time.Time),
		now:       time.Now,
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*gateway.CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.responses[key]
	if !ok || !s.now().Before(stored.expiresAt) {
		delete(s.responses, key)
		return nil, nil
	}
	resp := stored.response
	return &resp, nil
}

func (s *IdempotencyStore) Save(_ context.Context, key string, response gateway.CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = idempotentResponse{response: response, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expiresAt, ok := s.inFlight[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.inFlight[key] = now.Add(ttl)
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
	return nil
}
