package gateway

import (
	"context"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/shopspring/decimal"
)

// UserRepository is the ledger's view of account holders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// UpdateDetails rewrites name, email, document and type. Balance is never touched.
	UpdateDetails(ctx context.Context, user *domain.User) error
	// SoftDelete fails with domain.ErrUserInUse while pending movements reference the user.
	SoftDelete(ctx context.Context, id int64) error

	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error)
	// Debit fails with domain.ErrInsufficientBalance instead of going negative.
	Debit(ctx context.Context, id int64, amount decimal.Decimal) error
	Credit(ctx context.Context, id int64, amount decimal.Decimal) error

	WithTx(tx TransactionObject) UserRepository
}
