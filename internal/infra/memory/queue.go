package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Queue is a channel backed task queue with the same redelivery contract as the
// RabbitMQ consumer. Tasks are lost when the process exits.
type Queue struct {
	tasks       chan domain.SettlementTask
	workers     int
	maxAttempts int
	backoff     time.Duration

	mu   sync.Mutex
	dead []domain.SettlementTask
}

var (
	_ gateway.TaskPublisher = (*Queue)(nil)
	_ gateway.TaskConsumer  = (*Queue)(nil)
)

func NewQueue(buffer, workers, maxAttempts int, backoff time.Duration) *Queue {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		tasks:       make(chan domain.SettlementTask, buffer),
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (q *Queue) Publish(ctx context.Context, task domain.SettlementTask) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until ctx is cancelled.
func (q *Queue) Consume(ctx context.Context, handler gateway.TaskHandler) error {
	var g errgroup.Group
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case task := <-q.tasks:
					q.handle(ctx, handler, task)
				}
			}
		})
	}
	return g.Wait()
}

func (q *Queue) handle(ctx context.Context, handler gateway.TaskHandler, task domain.SettlementTask) {
	err := handler(ctx, task)
	if err == nil {
		return
	}

	logger := log.With().Str("kind", string(task.Kind)).Str("id", task.ID).Int("attempt", task.Attempt).Logger()
	if errors.Is(err, gateway.ErrUnprocessableTask) || task.Attempt+1 >= q.maxAttempts {
		logger.Error().Err(err).Msg("dead-lettering settlement task")
		q.mu.Lock()
		q.dead = append(q.dead, task)
		q.mu.Unlock()
		return
	}

	logger.Warn().Err(err).Msg("settlement task failed, scheduling redelivery")
	task.Attempt++
	delay := q.backoff * time.Duration(task.Attempt)
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		select {
		case q.tasks <- task:
		case <-ctx.Done():
		}
	}()
}

// DeadLetters returns the tasks that exhausted their attempts or were unprocessable.
func (q *Queue) DeadLetters() []domain.SettlementTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.SettlementTask(nil), q.dead...)
}
