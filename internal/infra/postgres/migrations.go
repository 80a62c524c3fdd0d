package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE,
		document    VARCHAR(14) NOT NULL UNIQUE,
		user_type   TEXT NOT NULL CHECK (user_type IN ('individual', 'business')),
		balance     NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at  TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id              UUID PRIMARY KEY,
		payer           BIGINT NOT NULL REFERENCES users (id),
		payee           BIGINT NOT NULL REFERENCES users (id),
		value           NUMERIC(14, 2) NOT NULL CHECK (value > 0),
		status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		failure_reason  TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at      TIMESTAMPTZ,
		CHECK (payer <> payee)
	)`,
	`CREATE INDEX IF NOT EXISTS transfers_updated_at_idx ON transfers (updated_at) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS transfers_pending_parties_idx ON transfers (payer, payee) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS deposits (
		id              UUID PRIMARY KEY,
		receiver        BIGINT NOT NULL REFERENCES users (id),
		value           NUMERIC(14, 2) NOT NULL CHECK (value > 0),
		status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		failure_reason  TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at      TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS deposits_updated_at_idx ON deposits (updated_at) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS deposits_pending_receiver_idx ON deposits (receiver) WHERE status = 'pending'`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	log.Info().Int("statements", len(migrations)).Msg("database schema is up to date")
	return nil
}
