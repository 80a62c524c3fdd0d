package postgres

import (
	"context"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const userColumns = `id, name, email, document, user_type, balance::text, created_at, updated_at`

// UserRepository implements gateway.UserRepository using pgx/v5.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, document, user_type, balance)
		 VALUES ($1, $2, $3, $4, $5::numeric)
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.Document, string(user.Type), user.Balance.StringFixed(domain.MoneyScale),
	)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetByIDForUpdate holds the row lock until the surrounding transaction ends.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateDetails leaves balance alone; the stored row is scanned back into user.
func (r *UserRepository) UpdateDetails(ctx context.Context, user *domain.User) error {
	updated, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, document = $4, user_type = $5, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.Document, string(user.Type),
	))
	if err != nil {
		switch {
		case isNoRows(err):
			return domain.ErrUserNotFound
		case hasCode(err, codeUniqueViolation):
			return domain.ErrUserExists
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	*user = *updated
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		   AND NOT EXISTS (SELECT 1 FROM transfers WHERE status = 'pending' AND (payer = $1 OR payee = $1))
		   AND NOT EXISTS (SELECT 1 FROM deposits WHERE status = 'pending' AND receiver = $1)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrUserInUse
}

// Debit is guarded by balance >= amount; zero affected rows means the funds were not there.
func (r *UserRepository) Debit(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET balance = balance - $2::numeric, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL AND balance >= $2::numeric`,
		id, amount.StringFixed(domain.MoneyScale),
	)
	if err != nil {
		return fmt.Errorf("failed to debit user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *UserRepository) Credit(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET balance = balance + $2::numeric, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id, amount.StringFixed(domain.MoneyScale),
	)
	if err != nil {
		return fmt.Errorf("failed to credit user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// WithTx returns a copy bound to the given transaction.
func (r *UserRepository) WithTx(tx gateway.TransactionObject) gateway.UserRepository {
	return &UserRepository{db: withTx(r.db, tx)}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user     domain.User
		userType string
		balance  string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Document, &userType, &balance, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	user.Type = domain.UserType(userType)
	user.Balance = value
	return &user, nil
}
