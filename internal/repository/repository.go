// Package repository holds the SQL for persons, policies and claims.
//
// Every method returns driver errors tagged with the table they came
// from (see sqlerr.WithTable), so the service layer can turn a missing
// row into a precise 404 without parsing error strings.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	personsTable  = "persons"
	policiesTable = "policies"
	claimsTable   = "claims"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
