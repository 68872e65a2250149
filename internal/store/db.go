package store

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so SQL stores can run
// either standalone or inside a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stores bundles the durable stores handed to a unit of work.
type Stores struct {
	Users UserStore
	Sets  SetStore
}

// UnitOfWork is a function executed atomically against Stores.
type UnitOfWork func(ctx context.Context, s Stores) error

// Transactor runs units of work atomically. SQL backends use a database
// transaction; in-memory backends serialize callers.
type Transactor interface {
	WithinTx(ctx context.Context, fn UnitOfWork) error
}
