package usecase

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/shopspring/decimal"
)

const RecentTransfersKey = "recent_transfers"

// UpdateTransferInput holds an administrative correction. Nil fields are left as they are.
type UpdateTransferInput struct {
	Payer *int64
	Payee *int64
	Value *decimal.Decimal
}

// ManageTransfersUseCase is the read and administration path for transfers. It never
// settles anything.
type ManageTransfersUseCase struct {
	transferRepository gateway.TransferRepository
	userRepository     gateway.UserRepository
	recent             *recentListing[domain.Transfer]
}

func NewManageTransfers(transferRepo gateway.TransferRepository, userRepo gateway.UserRepository, opts RecentOptions) *ManageTransfersUseCase {
	return &ManageTransfersUseCase{
		transferRepository: transferRepo,
		userRepository:     userRepo,
		recent:             newRecentListing(RecentTransfersKey, opts, transferRepo.UpdatedSince),
	}
}

func (u *ManageTransfersUseCase) Find(ctx context.Context, id string) (*domain.Transfer, error) {
	return u.transferRepository.GetByID(ctx, id)
}

func (u *ManageTransfersUseCase) FindAll(ctx context.Context) ([]domain.Transfer, error) {
	return u.transferRepository.List(ctx)
}

// FindLasts may lag behind the store by up to the cache TTL.
func (u *ManageTransfersUseCase) FindLasts(ctx context.Context) ([]domain.Transfer, error) {
	return u.recent.Get(ctx)
}

func (u *ManageTransfersUseCase) InvalidateRecent(ctx context.Context) {
	u.recent.Invalidate(ctx)
}

// Update corrects the recorded parties or value. Status and balances are untouched.
func (u *ManageTransfersUseCase) Update(ctx context.Context, id string, input UpdateTransferInput) (*domain.Transfer, error) {
	transfer, err := u.transferRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Payer != nil {
		transfer.Payer = *input.Payer
	}
	if input.Payee != nil {
		transfer.Payee = *input.Payee
	}
	if input.Value != nil {
		transfer.Value = *input.Value
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	payer, err := u.userRepository.GetByID(ctx, transfer.Payer)
	if err != nil {
		return nil, fmt.Errorf("payer %d: %w", transfer.Payer, err)
	}
	if !payer.CanSend() {
		return nil, domain.ErrUnauthorizedPayer
	}
	if _, err := u.userRepository.GetByID(ctx, transfer.Payee); err != nil {
		return nil, fmt.Errorf("payee %d: %w", transfer.Payee, err)
	}

	if err := u.transferRepository.UpdateDetails(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}
	u.recent.Invalidate(ctx)
	return transfer, nil
}

// Delete soft-removes a settled transfer.
func (u *ManageTransfersUseCase) Delete(ctx context.Context, id string) error {
	transfer, err := u.transferRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transfer.Status.IsTerminal() {
		return domain.ErrMovementPending
	}
	if err := u.transferRepository.SoftDelete(ctx, id); err != nil {
		return err
	}
	u.recent.Invalidate(ctx)
	return nil
}
