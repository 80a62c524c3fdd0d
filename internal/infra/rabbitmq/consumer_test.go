package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	acked    int
	nacked   int
	requeued bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeued = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type capturePublisher struct {
	tasks []domain.SettlementTask
	err   error
}

func (p *capturePublisher) Publish(_ context.Context, task domain.SettlementTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, task domain.SettlementTask) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(task)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func newTestConsumer(p gateway.TaskPublisher, maxAttempts int) *Consumer {
	return NewConsumer(nil, p, ConsumerOptions{Workers: 1, MaxAttempts: maxAttempts, Backoff: time.Millisecond})
}

func TestConsumer_AcksOnSuccess(t *testing.T) {
	ack := &ackRecorder{}
	pub := &capturePublisher{}
	c := newTestConsumer(pub, 3)

	var got domain.SettlementTask
	c.handle(context.Background(), func(_ context.Context, task domain.SettlementTask) error {
		got = task
		return nil
	}, delivery(t, ack, domain.SettlementTask{Kind: domain.TaskTransfer, ID: "t1"}))

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
	assert.Empty(t, pub.tasks)
}

func TestConsumer_RepublishesWithNextAttempt(t *testing.T) {
	ack := &ackRecorder{}
	pub := &capturePublisher{}
	c := newTestConsumer(pub, 3)

	c.handle(context.Background(), func(context.Context, domain.SettlementTask) error {
		return errors.New("db unavailable")
	}, delivery(t, ack, domain.SettlementTask{Kind: domain.TaskDeposit, ID: "d1", Attempt: 1}))

	require.Len(t, pub.tasks, 1)
	assert.Equal(t, domain.SettlementTask{Kind: domain.TaskDeposit, ID: "d1", Attempt: 2}, pub.tasks[0])
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestConsumer_DeadLetters(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		err     error
	}{
		{name: "attempts exhausted", attempt: 2, err: errors.New("still failing")},
		{name: "unprocessable", attempt: 0, err: fmt.Errorf("%w: missing", gateway.ErrUnprocessableTask)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &ackRecorder{}
			pub := &capturePublisher{}
			c := newTestConsumer(pub, 3)

			c.handle(context.Background(), func(context.Context, domain.SettlementTask) error {
				return tt.err
			}, delivery(t, ack, domain.SettlementTask{Kind: domain.TaskTransfer, ID: "t1", Attempt: tt.attempt}))

			assert.Empty(t, pub.tasks)
			assert.Zero(t, ack.acked)
			assert.Equal(t, 1, ack.nacked)
			assert.False(t, ack.requeued)
		})
	}
}

func TestConsumer_UndecodableBodyIsDeadLettered(t *testing.T) {
	ack := &ackRecorder{}
	c := newTestConsumer(&capturePublisher{}, 3)
	called := false

	c.handle(context.Background(), func(context.Context, domain.SettlementTask) error {
		called = true
		return nil
	}, amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.False(t, called)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestConsumer_RequeuesWhenRepublishFails(t *testing.T) {
	ack := &ackRecorder{}
	c := newTestConsumer(&capturePublisher{err: errors.New("channel closed")}, 3)

	c.handle(context.Background(), func(context.Context, domain.SettlementTask) error {
		return errors.New("transient")
	}, delivery(t, ack, domain.SettlementTask{Kind: domain.TaskTransfer, ID: "t1"}))

	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeued)
}
