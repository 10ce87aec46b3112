// Package pgsql implements the repository ports on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction carried by the context.
// A call made while a transaction is already in ctx joins it.
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// db returns the transaction in ctx, or the pool outside of one.
func (r *BaseRepository) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// execIsolated runs a write inside a savepoint when a transaction is open, so a
// uniqueness violation leaves the surrounding transaction usable.
func (r *BaseRepository) execIsolated(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		tag, err := r.Pool.Exec(ctx, query, args...)
		return tag, mapWriteError(err)
	}

	savepoint, err := tx.Begin(ctx)
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("failed to create savepoint: %w", err)
	}
	tag, err := savepoint.Exec(ctx, query, args...)
	if err != nil {
		_ = savepoint.Rollback(ctx)
		return tag, mapWriteError(err)
	}
	if err := savepoint.Commit(ctx); err != nil {
		return tag, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return tag, nil
}

// mapWriteError turns a unique violation into *apperrors.ConflictError and leaves
// every other error untouched.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return &apperrors.ConflictError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// mapReadError maps pgx.ErrNoRows to apperrors.ErrNotFound.
func mapReadError(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
