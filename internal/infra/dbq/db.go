// Package dbq is the query layer over PostgreSQL.
// It follows the sqlc calling convention: every method receives the DBTX to run on,
// so the same Queries value serves the pool and any open transaction.
package dbq

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New() *Queries {
	return &Queries{}
}

type Queries struct{}

type scanner interface {
	Scan(dest ...any) error
}
