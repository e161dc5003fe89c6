package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sediment-db/sediment/internal/runner"
)

// Backend executes migration operations on PostgreSQL. Transactional runs
// set lock_timeout and statement_timeout so a stuck migration fails fast
// instead of holding locks.
type Backend struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// Transact runs fn inside a single transaction. On success the transaction
// is committed; on error it is rolled back.
func (b *Backend) Transact(ctx context.Context, fn func(runner.Session) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // rollback on committed tx returns ErrTxClosed

	if err := b.setTimeouts(ctx, tx); err != nil {
		return err
	}

	if err := fn(txSession{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// AutoCommit runs fn directly on the pool, outside any transaction.
// Required for statements like CREATE INDEX CONCURRENTLY which cannot run
// inside a transaction block.
func (b *Backend) AutoCommit(_ context.Context, fn func(runner.Session) error) error {
	return fn(poolSession{pool: b.pool})
}

// setTimeouts applies the configured lock_timeout and statement_timeout to
// the transaction. Zero values leave the server defaults in place.
func (b *Backend) setTimeouts(ctx context.Context, tx pgx.Tx) error {
	if b.lockTimeout > 0 {
		sql := fmt.Sprintf("SET lock_timeout = '%dms'", b.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("setting lock_timeout: %w", err)
		}
	}

	if b.statementTimeout > 0 {
		sql := fmt.Sprintf("SET statement_timeout = '%dms'", b.statementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("setting statement_timeout: %w", err)
		}
	}

	return nil
}

// txSession executes statements on a transaction.
type txSession struct {
	tx pgx.Tx
}

func (s txSession) Exec(ctx context.Context, sql string) error {
	if _, err := s.tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}

	return nil
}

// poolSession executes statements directly on the pool in autocommit mode.
type poolSession struct {
	pool *pgxpool.Pool
}

func (s poolSession) Exec(ctx context.Context, sql string) error {
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("executing outside transaction: %w", err)
	}

	return nil
}
