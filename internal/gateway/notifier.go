package gateway

import (
	"context"
	"fmt"
)

// Notification announces the final status of a movement.
type Notification struct {
	EntityID string `json:"entity_id"`
	Status   string `json:"status"`
}

// DedupKey identifies a notification for at-most-once successful delivery.
func (n Notification) DedupKey() string {
	return n.EntityID + ":" + n.Status
}

// NotificationFailedError is returned when the sink did not acknowledge a notification.
type NotificationFailedError struct {
	EntityID   string
	StatusCode int
	Err        error
}

func (e *NotificationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notification for %s failed: %v", e.EntityID, e.Err)
	}
	return fmt.Sprintf("notification for %s failed: unexpected response (status %d)", e.EntityID, e.StatusCode)
}

func (e *NotificationFailedError) Unwrap() error {
	return e.Err
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationLog remembers which notifications were acknowledged by the sink.
type NotificationLog interface {
	WasSent(ctx context.Context, key string) (bool, error)
	MarkSent(ctx context.Context, key string) error
}
