// Package dbx holds the minimal query surface the domain repositories need,
// satisfied by both *pgxpool.Pool and pgx.Tx.
package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner is the subset needed to open transactions; *pgxpool.Pool provides it.
type Beginner interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
