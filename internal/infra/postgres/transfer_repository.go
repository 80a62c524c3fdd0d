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
	"github.com/shopspring/decimal"
)

const transferColumns = `id::text, payer, payee, value::text, status, failure_reason, created_at, updated_at`

type TransferRepository struct {
	db DBTX
}

func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{db: pool}
}

func (r *TransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if transfer.Status == "" {
		transfer.Status = domain.StatusPending
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO transfers (id, payer, payee, value, status)
		 VALUES ($1::uuid, $2, $3, $4::numeric, $5)
		 RETURNING created_at, updated_at`,
		transfer.ID, transfer.Payer, transfer.Payee, transfer.Value.StringFixed(domain.MoneyScale), string(transfer.Status),
	)
	if err := row.Scan(&transfer.CreatedAt, &transfer.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1::uuid AND deleted_at IS NULL`, id)
}

func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1::uuid AND deleted_at IS NULL FOR UPDATE`, id)
}

func (r *TransferRepository) get(ctx context.Context, query, id string) (*domain.Transfer, error) {
	transfer, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer %s: %w", id, err)
	}
	return transfer, nil
}

func (r *TransferRepository) List(ctx context.Context) ([]domain.Transfer, error) {
	return r.list(ctx, `SELECT `+transferColumns+` FROM transfers WHERE deleted_at IS NULL ORDER BY created_at`)
}

func (r *TransferRepository) UpdatedSince(ctx context.Context, since time.Time) ([]domain.Transfer, error) {
	return r.list(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE deleted_at IS NULL AND updated_at >= $1 ORDER BY created_at`,
		since,
	)
}

func (r *TransferRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transfer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *transfer)
	}
	return transfers, rows.Err()
}

func (r *TransferRepository) UpdateDetails(ctx context.Context, transfer *domain.Transfer) error {
	updated, err := scanTransfer(r.db.QueryRow(ctx,
		`UPDATE transfers SET payer = $2, payee = $3, value = $4::numeric, updated_at = now()
		 WHERE id = $1::uuid AND deleted_at IS NULL
		 RETURNING `+transferColumns,
		transfer.ID, transfer.Payer, transfer.Payee, transfer.Value.StringFixed(domain.MoneyScale),
	))
	if err != nil {
		if isMissing(err) {
			return domain.ErrTransferNotFound
		}
		return fmt.Errorf("failed to update transfer %s: %w", transfer.ID, err)
	}
	*transfer = *updated
	return nil
}

// Finalize only moves a pending transfer, so a duplicate delivery cannot finalize twice.
func (r *TransferRepository) Finalize(ctx context.Context, id string, status domain.Status, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transfers SET status = $2, failure_reason = $3, updated_at = now()
		 WHERE id = $1::uuid AND status = 'pending'`,
		id, string(status), reason,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize transfer %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check transfer %s: %w", id, err)
	}
	if !exists {
		return domain.ErrTransferNotFound
	}
	return domain.ErrAlreadyFinalized
}

func (r *TransferRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transfers SET deleted_at = now(), updated_at = now() WHERE id = $1::uuid AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		if isMissing(err) {
			return domain.ErrTransferNotFound
		}
		return fmt.Errorf("failed to delete transfer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}
	return nil
}

func (r *TransferRepository) WithTx(tx gateway.TransactionObject) gateway.TransferRepository {
	return &TransferRepository{db: withTx(r.db, tx)}
}

// movementRow holds the columns of transfers and deposits that need conversion.
type movementRow struct {
	value  string
	status string
}

func (m movementRow) apply(value *decimal.Decimal, status *domain.Status) error {
	v, err := decimal.NewFromString(m.value)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", m.value, err)
	}
	*value, *status = v, domain.Status(m.status)
	return nil
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer domain.Transfer
		m        movementRow
	)
	err := row.Scan(&transfer.ID, &transfer.Payer, &transfer.Payee, &m.value, &m.status,
		&transfer.FailureReason, &transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := m.apply(&transfer.Value, &transfer.Status); err != nil {
		return nil, err
	}
	return &transfer, nil
}
