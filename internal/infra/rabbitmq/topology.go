package rabbitmq

import (
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange           = "settlement"
	DeadLetterExchange = "settlement.dlx"
	DeadLetterQueue    = "settlement.dead"
	TransferQueue      = "transfers"
	DepositQueue       = "deposits"
)

// queues maps each settlement queue to the task kind used as its routing key.
var queues = map[string]domain.TaskKind{
	TransferQueue: domain.TaskTransfer,
	DepositQueue:  domain.TaskDeposit,
}

// Dial opens a named connection.
func Dial(url, name string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Properties: amqp.Table{"connection_name": name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return conn, nil
}

// DeclareTopology creates the exchanges and queues. Every declaration is idempotent.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		Exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}
	if err := ch.ExchangeDeclare(DeadLetterExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", DeadLetterExchange, err)
	}

	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", DeadLetterQueue, err)
	}
	if err := ch.QueueBind(DeadLetterQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", DeadLetterQueue, err)
	}

	for name, kind := range queues {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			amqp.Table{"x-dead-letter-exchange": DeadLetterExchange},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
		if err := ch.QueueBind(name, string(kind), Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", name, err)
		}
	}
	return nil
}
