package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sediment-db/sediment/internal/runner"
)

// Backend executes migration operations on MySQL.
type Backend struct {
	db *sql.DB
}

// RequiresAutoCommit always reports false: MySQL has no statement that
// demands running outside a transaction the way CREATE INDEX CONCURRENTLY
// does on PostgreSQL. DDL auto-commits on the server regardless.
func (b *Backend) RequiresAutoCommit(string) (bool, error) {
	return false, nil
}

// Transact runs fn inside a single transaction. On success the transaction
// is committed; on error it is rolled back.
func (b *Backend) Transact(ctx context.Context, fn func(runner.Session) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback on committed tx returns ErrTxDone

	if err := fn(txSession{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// AutoCommit runs fn directly on the connection pool.
func (b *Backend) AutoCommit(_ context.Context, fn func(runner.Session) error) error {
	return fn(dbSession{db: b.db})
}

// txSession executes statements on a transaction.
type txSession struct {
	tx *sql.Tx
}

func (s txSession) Exec(ctx context.Context, sqlText string) error {
	if _, err := s.tx.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}

	return nil
}

// dbSession executes statements directly in autocommit mode.
type dbSession struct {
	db *sql.DB
}

func (s dbSession) Exec(ctx context.Context, sqlText string) error {
	if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("executing outside transaction: %w", err)
	}

	return nil
}
