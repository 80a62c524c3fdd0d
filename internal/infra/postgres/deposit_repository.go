package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const depositColumns = `id::text, receiver, value::text, status, failure_reason, created_at, updated_at`

type DepositRepository struct {
	db DBTX
}

func NewDepositRepository(pool *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: pool}
}

func (r *DepositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	if deposit.ID == "" {
		deposit.ID = uuid.NewString()
	}
	if deposit.Status == "" {
		deposit.Status = domain.StatusPending
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO deposits (id, receiver, value, status)
		 VALUES ($1::uuid, $2, $3::numeric, $4)
		 RETURNING created_at, updated_at`,
		deposit.ID, deposit.Receiver, deposit.Value.StringFixed(domain.MoneyScale), string(deposit.Status),
	)
	if err := row.Scan(&deposit.CreatedAt, &deposit.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

func (r *DepositRepository) GetByID(ctx context.Context, id string) (*domain.Deposit, error) {
	return r.get(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1::uuid AND deleted_at IS NULL`, id)
}

func (r *DepositRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Deposit, error) {
	return r.get(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1::uuid AND deleted_at IS NULL FOR UPDATE`, id)
}

func (r *DepositRepository) get(ctx context.Context, query, id string) (*domain.Deposit, error) {
	deposit, err := scanDeposit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to get deposit %s: %w", id, err)
	}
	return deposit, nil
}

func (r *DepositRepository) List(ctx context.Context) ([]domain.Deposit, error) {
	return r.list(ctx, `SELECT `+depositColumns+` FROM deposits WHERE deleted_at IS NULL ORDER BY created_at`)
}

func (r *DepositRepository) UpdatedSince(ctx context.Context, since time.Time) ([]domain.Deposit, error) {
	return r.list(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE deleted_at IS NULL AND updated_at >= $1 ORDER BY created_at`,
		since,
	)
}

func (r *DepositRepository) list(ctx context.Context, query string, args ...any) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *deposit)
	}
	return deposits, rows.Err()
}

func (r *DepositRepository) UpdateDetails(ctx context.Context, deposit *domain.Deposit) error {
	updated, err := scanDeposit(r.db.QueryRow(ctx,
		`UPDATE deposits SET receiver = $2, value = $3::numeric, updated_at = now()
		 WHERE id = $1::uuid AND deleted_at IS NULL
		 RETURNING `+depositColumns,
		deposit.ID, deposit.Receiver, deposit.Value.StringFixed(domain.MoneyScale),
	))
	if err != nil {
		if isMissing(err) {
			return domain.ErrDepositNotFound
		}
		return fmt.Errorf("failed to update deposit %s: %w", deposit.ID, err)
	}
	*deposit = *updated
	return nil
}

func (r *DepositRepository) Finalize(ctx context.Context, id string, status domain.Status, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE deposits SET status = $2, failure_reason = $3, updated_at = now()
		 WHERE id = $1::uuid AND status = 'pending'`,
		id, string(status), reason,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize deposit %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM deposits WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check deposit %s: %w", id, err)
	}
	if !exists {
		return domain.ErrDepositNotFound
	}
	return domain.ErrAlreadyFinalized
}

func (r *DepositRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE deposits SET deleted_at = now(), updated_at = now() WHERE id = $1::uuid AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		if isMissing(err) {
			return domain.ErrDepositNotFound
		}
		return fmt.Errorf("failed to delete deposit %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDepositNotFound
	}
	return nil
}

func (r *DepositRepository) WithTx(tx gateway.TransactionObject) gateway.DepositRepository {
	return &DepositRepository{db: withTx(r.db, tx)}
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var (
		deposit domain.Deposit
		m       movementRow
	)
	err := row.Scan(&deposit.ID, &deposit.Receiver, &m.value, &m.status,
		&deposit.FailureReason, &deposit.CreatedAt, &deposit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := m.apply(&deposit.Value, &deposit.Status); err != nil {
		return nil, err
	}
	return &deposit, nil
}
