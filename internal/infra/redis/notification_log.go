package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/redis/go-redis/v9"
)

const notificationPrefix = "notified:"

// NotificationLog records acknowledged notifications so redeliveries do not repeat them.
type NotificationLog struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ gateway.NotificationLog = (*NotificationLog)(nil)

// NewNotificationLog keeps entries for ttl; zero keeps them forever.
func NewNotificationLog(client redis.Cmdable, ttl time.Duration) *NotificationLog {
	return &NotificationLog{client: client, ttl: ttl}
}

func (l *NotificationLog) WasSent(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, notificationPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check notification %s: %w", key, err)
	}
	return n > 0, nil
}

func (l *NotificationLog) MarkSent(ctx context.Context, key string) error {
	if err := l.client.SetNX(ctx, notificationPrefix+key, time.Now().Unix(), l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark notification %s: %w", key, err)
	}
	return nil
}
