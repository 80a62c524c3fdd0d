package usecase

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type AdmitTransferInput struct {
	Payer int64
	Payee int64
	Value decimal.Decimal
}

// AdmitTransferUseCase runs the synchronous checks, persists a pending transfer and
// schedules its settlement.
type AdmitTransferUseCase struct {
	userRepository     gateway.UserRepository
	transferRepository gateway.TransferRepository
	taskPublisher      gateway.TaskPublisher
}

func NewAdmitTransfer(
	userRepo gateway.UserRepository,
	transferRepo gateway.TransferRepository,
	publisher gateway.TaskPublisher,
) *AdmitTransferUseCase {
	return &AdmitTransferUseCase{
		userRepository:     userRepo,
		transferRepository: transferRepo,
		taskPublisher:      publisher,
	}
}

func (u *AdmitTransferUseCase) Execute(ctx context.Context, input AdmitTransferInput) (*domain.Transfer, error) {
	transfer := &domain.Transfer{
		Payer:  input.Payer,
		Payee:  input.Payee,
		Value:  input.Value,
		Status: domain.StatusPending,
	}
	// 1-2. Amount and self-transfer need no lookups.
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	// 3. Both parties must exist. Balances read here are advisory; settlement re-checks under lock.
	payer, err := u.userRepository.GetByID(ctx, input.Payer)
	if err != nil {
		return nil, fmt.Errorf("payer %d: %w", input.Payer, err)
	}
	if _, err := u.userRepository.GetByID(ctx, input.Payee); err != nil {
		return nil, fmt.Errorf("payee %d: %w", input.Payee, err)
	}

	// 4-5. Business accounts only receive; the payer must cover the value right now.
	if !payer.CanSend() {
		return nil, domain.ErrUnauthorizedPayer
	}
	if !payer.HasSufficientFunds(input.Value) {
		return nil, domain.ErrInsufficientBalance
	}

	if err := u.transferRepository.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	// Persisted as pending; the worker takes it from here.
	task := domain.SettlementTask{Kind: domain.TaskTransfer, ID: transfer.ID}
	if err := u.taskPublisher.Publish(ctx, task); err != nil {
		// Without a task the transfer would stay pending forever.
		if ferr := u.transferRepository.Finalize(ctx, transfer.ID, domain.StatusFailed, domain.ReasonEnqueueFailed); ferr != nil {
			log.Error().Err(ferr).Str("transfer_id", transfer.ID).Msg("failed to mark unscheduled transfer as failed")
		}
		return nil, fmt.Errorf("failed to schedule settlement for transfer %s: %w", transfer.ID, err)
	}

	log.Info().Str("transfer_id", transfer.ID).Int64("payer", transfer.Payer).Int64("payee", transfer.Payee).
		Str("value", transfer.Value.StringFixed(domain.MoneyScale)).Msg("transfer admitted")
	return transfer, nil
}
