package usecase

import (
	"context"
	"errors"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

// NotificationDispatcher sends best-effort notifications, skipping ones the sink has
// already acknowledged. A failure never propagates to the caller.
type NotificationDispatcher struct {
	notifier gateway.Notifier
	sent     gateway.NotificationLog
	metrics  gateway.Metrics
}

func NewNotificationDispatcher(notifier gateway.Notifier, sent gateway.NotificationLog, metrics gateway.Metrics) *NotificationDispatcher {
	if metrics == nil {
		metrics = gateway.NoopMetrics{}
	}
	return &NotificationDispatcher{
		notifier: notifier,
		sent:     sent,
		metrics:  metrics,
	}
}

// Dispatch reports whether the notification is known to be delivered.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n gateway.Notification) bool {
	key := n.DedupKey()
	if d.sent != nil {
		already, err := d.sent.WasSent(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("notification log unavailable, sending anyway")
		} else if already {
			log.Debug().Str("key", key).Msg("notification already delivered")
			d.metrics.ObserveGateway("notification", "duplicate")
			return true
		}
	}

	if err := d.notifier.Send(ctx, n); err != nil {
		event := log.Error().Err(err).Str("entity_id", n.EntityID).Str("status", n.Status)
		var failed *gateway.NotificationFailedError
		if errors.As(err, &failed) && failed.StatusCode != 0 {
			event = event.Int("http_status", failed.StatusCode)
		}
		event.Msg("notification failed")
		d.metrics.ObserveGateway("notification", "failed")
		return false
	}
	d.metrics.ObserveGateway("notification", "sent")

	if d.sent != nil {
		if err := d.sent.MarkSent(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to record delivered notification")
		}
	}
	return true
}
