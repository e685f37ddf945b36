package db

import (
	"context"
	"database/sql"
)

// DBTX is what the call-log and run-history repositories query through.
// Passing *sql.DB gives autocommit writes, as the observers use per call;
// passing the *sql.Tx from WithinTx lets prune delete from llm_calls and
// roadmap_runs atomically.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
