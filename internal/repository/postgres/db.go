package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"roadtrip/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx, so trip and
// stop repositories can run inside a save transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
