package gateway

import (
	"context"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
)

// TransferRepository persists transfers. Finalize only moves a pending transfer and
// returns domain.ErrAlreadyFinalized otherwise.
type TransferRepository interface {
	Create(ctx context.Context, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Transfer, error)
	List(ctx context.Context) ([]domain.Transfer, error)
	UpdatedSince(ctx context.Context, since time.Time) ([]domain.Transfer, error)
	UpdateDetails(ctx context.Context, transfer *domain.Transfer) error
	Finalize(ctx context.Context, id string, status domain.Status, reason string) error
	SoftDelete(ctx context.Context, id string) error

	WithTx(tx TransactionObject) TransferRepository
}

// DepositRepository mirrors TransferRepository for single-party credits.
type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	GetByID(ctx context.Context, id string) (*domain.Deposit, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Deposit, error)
	List(ctx context.Context) ([]domain.Deposit, error)
	UpdatedSince(ctx context.Context, since time.Time) ([]domain.Deposit, error)
	UpdateDetails(ctx context.Context, deposit *domain.Deposit) error
	Finalize(ctx context.Context, id string, status domain.Status, reason string) error
	SoftDelete(ctx context.Context, id string) error

	WithTx(tx TransactionObject) DepositRepository
}
