// Package repository provides data access for users, portfolios, holdings,
// transactions and watchlists against SQLite.
//
// Mutating methods that must participate in one atomic unit of work accept
// a DBTX so the service layer can pass either the bare connection or an
// open *sql.Tx. Trade execution (ledger append + holding mutation) always
// runs on a transaction: both writes commit or neither does.
package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
