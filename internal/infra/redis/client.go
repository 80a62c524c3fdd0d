package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
