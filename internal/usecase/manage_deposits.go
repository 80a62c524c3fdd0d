package usecase

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/shopspring/decimal"
)

const RecentDepositsKey = "recent_deposits"

type UpdateDepositInput struct {
	Receiver *int64
	Value    *decimal.Decimal
}

type ManageDepositsUseCase struct {
	depositRepository gateway.DepositRepository
	userRepository    gateway.UserRepository
	recent            *recentListing[domain.Deposit]
}

func NewManageDeposits(depositRepo gateway.DepositRepository, userRepo gateway.UserRepository, opts RecentOptions) *ManageDepositsUseCase {
	return &ManageDepositsUseCase{
		depositRepository: depositRepo,
		userRepository:    userRepo,
		recent:            newRecentListing(RecentDepositsKey, opts, depositRepo.UpdatedSince),
	}
}

func (u *ManageDepositsUseCase) Find(ctx context.Context, id string) (*domain.Deposit, error) {
	return u.depositRepository.GetByID(ctx, id)
}

func (u *ManageDepositsUseCase) FindAll(ctx context.Context) ([]domain.Deposit, error) {
	return u.depositRepository.List(ctx)
}

func (u *ManageDepositsUseCase) FindLasts(ctx context.Context) ([]domain.Deposit, error) {
	return u.recent.Get(ctx)
}

func (u *ManageDepositsUseCase) InvalidateRecent(ctx context.Context) {
	u.recent.Invalidate(ctx)
}

func (u *ManageDepositsUseCase) Update(ctx context.Context, id string, input UpdateDepositInput) (*domain.Deposit, error) {
	deposit, err := u.depositRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Receiver != nil {
		if _, err := u.userRepository.GetByID(ctx, *input.Receiver); err != nil {
			return nil, fmt.Errorf("receiver %d: %w", *input.Receiver, err)
		}
		deposit.Receiver = *input.Receiver
	}
	if input.Value != nil {
		if err := domain.ValidateAmount(*input.Value); err != nil {
			return nil, err
		}
		deposit.Value = *input.Value
	}

	if err := u.depositRepository.UpdateDetails(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}
	u.recent.Invalidate(ctx)
	return deposit, nil
}

func (u *ManageDepositsUseCase) Delete(ctx context.Context, id string) error {
	deposit, err := u.depositRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !deposit.Status.IsTerminal() {
		return domain.ErrMovementPending
	}
	if err := u.depositRepository.SoftDelete(ctx, id); err != nil {
		return err
	}
	u.recent.Invalidate(ctx)
	return nil
}
