package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher sends settlement tasks to the settlement exchange, routed by kind.
type Publisher struct {
	mu      sync.Mutex
	channel *amqp.Channel
}

var _ gateway.TaskPublisher = (*Publisher)(nil)

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{channel: ch}
}

func (p *Publisher) Publish(ctx context.Context, task domain.SettlementTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		Exchange,          // exchange
		string(task.Kind), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // survives a broker restart
			MessageId:    task.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}

	log.Debug().Str("kind", string(task.Kind)).Str("id", task.ID).Int("attempt", task.Attempt).Msg("settlement task published")
	return nil
}
