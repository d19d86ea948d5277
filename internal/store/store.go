// Package store persists the four record kinds behind the voice tools:
// providers, callers, bookings and triage records. It is the single
// serialization point for every check-then-write sequence in the core;
// callers run those sequences through WithinTx so a unit of work either
// commits fully or rolls back fully.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx behavior shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps the database pool.
type Store struct {
	pool PgxPool
}

// New creates a store backed by the given pool.
func New(pool PgxPool) *Store {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithinTx runs fn inside one transaction. The transaction is rolled back
// on any error out of fn, including sentinel errors used for negative
// outcomes, and committed otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

func (s *Store) querier(q Querier) Querier {
	if q == nil {
		return s.pool
	}
	return q
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
