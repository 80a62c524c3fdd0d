package postgres

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Uow implements gateway.TransactionManager.
type Uow struct {
	pool *pgxpool.Pool
}

var _ gateway.TransactionManager = (*Uow)(nil)

func NewUow(pool *pgxpool.Pool) *Uow {
	return &Uow{pool: pool}
}

// Run executes fn inside a READ COMMITTED transaction. Row locks taken with
// SELECT ... FOR UPDATE provide the isolation settlement needs.
func (u *Uow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback on every early return and on panic; a no-op after a successful commit.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Repositories pick the transaction up from the context via WithTx(gateway.TxFrom(ctx)).
	ctxWithTx := context.WithValue(ctx, gateway.TransactionKey, tx)

	if err := fn(ctxWithTx); err != nil {
		return err // rolled back by the defer
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// withTx returns the pgx transaction carried by tx, or fallback when tx is not one.
func withTx(fallback DBTX, tx gateway.TransactionObject) DBTX {
	if pgTx, ok := tx.(pgx.Tx); ok {
		return pgTx
	}
	return fallback
}
