package gateway

import (
	"context"
	"errors"

	"github.com/LuanMakohin/api-simples/internal/domain"
)

// ErrUnprocessableTask marks handler failures that redelivery cannot fix.
// Consumers dead-letter such tasks immediately.
var ErrUnprocessableTask = errors.New("unprocessable settlement task")

type TaskPublisher interface {
	Publish(ctx context.Context, task domain.SettlementTask) error
}

type TaskHandler func(ctx context.Context, task domain.SettlementTask) error

// TaskConsumer delivers tasks at least once until ctx is cancelled. A handler error makes
// the task eligible for redelivery under the consumer's own retry policy.
type TaskConsumer interface {
	Consume(ctx context.Context, handler TaskHandler) error
}
