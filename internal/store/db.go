package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql operations the stores need. Both
// *sql.DB and *sql.Tx satisfy it, so a store built over a transaction is
// the same type as one built over the pool.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
