package usecase

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type AdmitDepositInput struct {
	Receiver int64
	Value    decimal.Decimal
}

type AdmitDepositUseCase struct {
	userRepository    gateway.UserRepository
	depositRepository gateway.DepositRepository
	taskPublisher     gateway.TaskPublisher
}

func NewAdmitDeposit(
	userRepo gateway.UserRepository,
	depositRepo gateway.DepositRepository,
	publisher gateway.TaskPublisher,
) *AdmitDepositUseCase {
	return &AdmitDepositUseCase{
		userRepository:    userRepo,
		depositRepository: depositRepo,
		taskPublisher:     publisher,
	}
}

func (u *AdmitDepositUseCase) Execute(ctx context.Context, input AdmitDepositInput) (*domain.Deposit, error) {
	if err := domain.ValidateAmount(input.Value); err != nil {
		return nil, err
	}
	if _, err := u.userRepository.GetByID(ctx, input.Receiver); err != nil {
		return nil, fmt.Errorf("receiver %d: %w", input.Receiver, err)
	}

	deposit := &domain.Deposit{
		Receiver: input.Receiver,
		Value:    input.Value,
		Status:   domain.StatusPending,
	}
	if err := u.depositRepository.Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}

	task := domain.SettlementTask{Kind: domain.TaskDeposit, ID: deposit.ID}
	if err := u.taskPublisher.Publish(ctx, task); err != nil {
		if ferr := u.depositRepository.Finalize(ctx, deposit.ID, domain.StatusFailed, domain.ReasonEnqueueFailed); ferr != nil {
			log.Error().Err(ferr).Str("deposit_id", deposit.ID).Msg("failed to mark unscheduled deposit as failed")
		}
		return nil, fmt.Errorf("failed to schedule settlement for deposit %s: %w", deposit.ID, err)
	}

	log.Info().Str("deposit_id", deposit.ID).Int64("receiver", deposit.Receiver).
		Str("value", deposit.Value.StringFixed(domain.MoneyScale)).Msg("deposit admitted")
	return deposit, nil
}
