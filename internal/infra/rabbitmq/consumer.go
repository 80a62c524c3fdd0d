package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type ConsumerOptions struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
}

// Consumer reads both settlement queues with manual acknowledgement. A failed task is
// republished with its attempt counter increased; once attempts are exhausted it is
// rejected into the dead-letter exchange.
type Consumer struct {
	channel   *amqp.Channel
	republish gateway.TaskPublisher
	opts      ConsumerOptions
}

var _ gateway.TaskConsumer = (*Consumer)(nil)

func NewConsumer(ch *amqp.Channel, republish gateway.TaskPublisher, opts ConsumerOptions) *Consumer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Consumer{channel: ch, republish: republish, opts: opts}
}

// Consume blocks until ctx is cancelled or the channel closes.
func (c *Consumer) Consume(ctx context.Context, handler gateway.TaskHandler) error {
	// Prefetch matches the worker count so no delivery waits on a busy worker.
	if err := c.channel.Qos(c.opts.Workers, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries := make(chan amqp.Delivery)
	g, ctx := errgroup.WithContext(ctx)

	for name := range queues {
		msgs, err := c.channel.Consume(
			name,               // queue
			"settlement_"+name, // consumer tag
			false,              // auto-ack
			false,              // exclusive
			false,              // no-local
			false,              // no-wait
			nil,                // args
		)
		if err != nil {
			return fmt.Errorf("failed to consume %s: %w", name, err)
		}
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case d, ok := <-msgs:
					if !ok {
						return fmt.Errorf("delivery channel for %s closed", name)
					}
					select {
					case deliveries <- d:
					case <-ctx.Done():
						return nil
					}
				}
			}
		})
	}

	closed := c.channel.NotifyClose(make(chan *amqp.Error, 1))
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-closed:
			if ok && err != nil {
				return fmt.Errorf("rabbitmq channel closed: %w", err)
			}
			return errors.New("rabbitmq channel closed")
		}
	})

	for i := 0; i < c.opts.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case d := <-deliveries:
					c.handle(ctx, handler, d)
				}
			}
		})
	}

	log.Info().Int("workers", c.opts.Workers).Msg("settlement consumer started")
	return g.Wait()
}

func (c *Consumer) handle(ctx context.Context, handler gateway.TaskHandler, d amqp.Delivery) {
	var task domain.SettlementTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Error().Err(err).Bytes("body", d.Body).Msg("undecodable settlement task, dead-lettering")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("failed to nack delivery")
		}
		return
	}
	logger := log.With().Str("kind", string(task.Kind)).Str("id", task.ID).Int("attempt", task.Attempt).Logger()

	err := handler(ctx, task)
	if err == nil {
		if err := d.Ack(false); err != nil {
			logger.Error().Err(err).Msg("failed to ack delivery")
		}
		return
	}

	if errors.Is(err, gateway.ErrUnprocessableTask) || task.Attempt+1 >= c.opts.MaxAttempts {
		logger.Error().Err(err).Msg("dead-lettering settlement task")
		if err := d.Nack(false, false); err != nil {
			logger.Error().Err(err).Msg("failed to nack delivery")
		}
		return
	}

	logger.Warn().Err(err).Msg("settlement task failed, scheduling redelivery")
	task.Attempt++
	timer := time.NewTimer(c.opts.Backoff * time.Duration(task.Attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// Unacked deliveries return to the queue when the channel closes.
		_ = d.Nack(false, true)
		return
	case <-timer.C:
	}

	if err := c.republish.Publish(ctx, task); err != nil {
		logger.Error().Err(err).Msg("failed to republish task, requeueing original")
		if err := d.Nack(false, true); err != nil {
			logger.Error().Err(err).Msg("failed to nack delivery")
		}
		return
	}
	if err := d.Ack(false); err != nil {
		logger.Error().Err(err).Msg("failed to ack delivery")
	}
}
