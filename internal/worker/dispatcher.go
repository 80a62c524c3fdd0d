// Package worker routes settlement tasks from the queue to the settlement use cases.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/LuanMakohin/api-simples/internal/usecase"
	"github.com/rs/zerolog/log"
)

// Settler settles one movement by id.
type Settler interface {
	Execute(ctx context.Context, id string) (*usecase.SettlementOutcome, error)
}

type Dispatcher struct {
	settlers map[domain.TaskKind]Settler
	audit    gateway.AuditRepository
	metrics  gateway.Metrics
	now      func() time.Time
}

// NewDispatcher wires the settlers. audit may be nil.
func NewDispatcher(transfers, deposits Settler, audit gateway.AuditRepository, metrics gateway.Metrics) *Dispatcher {
	if metrics == nil {
		metrics = gateway.NoopMetrics{}
	}
	return &Dispatcher{
		settlers: map[domain.TaskKind]Settler{
			domain.TaskTransfer: transfers,
			domain.TaskDeposit:  deposits,
		},
		audit:   audit,
		metrics: metrics,
		now:     time.Now,
	}
}

// Handle is a gateway.TaskHandler. Tasks for unknown kinds or missing movements are
// marked unprocessable so the queue dead-letters them instead of retrying.
func (d *Dispatcher) Handle(ctx context.Context, task domain.SettlementTask) error {
	settler, ok := d.settlers[task.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", gateway.ErrUnprocessableTask, task.Kind)
	}

	start := d.now()
	outcome, err := settler.Execute(ctx, task.ID)
	elapsed := d.now().Sub(start)
	if err != nil {
		d.metrics.ObserveSettlement(string(task.Kind), "error", elapsed)
		if errors.Is(err, domain.ErrTransferNotFound) || errors.Is(err, domain.ErrDepositNotFound) {
			return fmt.Errorf("%w: %w", gateway.ErrUnprocessableTask, err)
		}
		return err
	}
	d.metrics.ObserveSettlement(string(task.Kind), string(outcome.Status), elapsed)

	if outcome.Changed && d.audit != nil {
		entry := gateway.AuditEntry{
			EntityID:    outcome.ID,
			Kind:        string(outcome.Kind),
			Status:      string(outcome.Status),
			Reason:      outcome.Reason,
			Value:       outcome.Value,
			Attempt:     task.Attempt,
			ProcessedAt: d.now(),
		}
		// Best effort: the movement is already final.
		if err := d.audit.Save(ctx, entry); err != nil {
			log.Error().Err(err).Str("entity_id", outcome.ID).Msg("failed to write settlement audit entry")
		}
	}
	return nil
}
