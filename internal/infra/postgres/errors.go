package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation   = "23505"
	codeInvalidTextFormat = "22P02"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// isMissing covers lookups by a malformed uuid as well as absent rows.
func isMissing(err error) bool {
	return isNoRows(err) || hasCode(err, codeInvalidTextFormat)
}
