package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Grammar adapts the SQL ledger to a specific database engine.
type Grammar struct {
	// CreateTableSQL is the engine's DDL for the schema_migrations table.
	CreateTableSQL string
	// IsDuplicate reports whether err is the engine's unique-constraint violation.
	IsDuplicate func(err error) bool
}

// SQL is a Ledger backed by a database/sql handle. MySQL and SQLite share
// this implementation; the Grammar carries the engine-specific pieces.
// Statements use ? placeholders.
type SQL struct {
	db *sql.DB
	g  Grammar
}

// NewSQL returns a SQL ledger on db using g.
func NewSQL(db *sql.DB, g Grammar) *SQL {
	return &SQL{db: db, g: g}
}

// EnsureInitialized creates the schema_migrations table if it does not exist.
func (l *SQL) EnsureInitialized(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, l.g.CreateTableSQL); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	return nil
}

// LastApplied returns the most recently inserted ledger record.
func (l *SQL) LastApplied(ctx context.Context) (Record, bool, error) {
	var r Record

	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, applied_on FROM schema_migrations ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.Name, &r.AppliedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("querying last applied migration: %w", err)
	}

	return r, true, nil
}

// IsApplied checks whether a migration name has been recorded as applied.
func (l *SQL) IsApplied(ctx context.Context, name string) (bool, error) {
	var n int

	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`,
		name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking if migration %s is applied: %w", name, err)
	}

	return n > 0, nil
}

// RecordApplied inserts a ledger row for name. Inserting the same name
// twice is an error, never an update.
func (l *SQL) RecordApplied(ctx context.Context, name string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO schema_migrations (name) VALUES (?)`,
		name,
	)
	if err != nil {
		if l.g.IsDuplicate != nil && l.g.IsDuplicate(err) {
			return fmt.Errorf("migration %s: %w", name, ErrDuplicateRecord)
		}

		return fmt.Errorf("recording migration %s as applied: %w", name, err)
	}

	return nil
}

// RecordReverted deletes the ledger row for name.
func (l *SQL) RecordReverted(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM schema_migrations WHERE name = ?`,
		name,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as reverted: %w", name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording migration %s as reverted: %w", name, err)
	}

	if affected == 0 {
		return fmt.Errorf("migration %s: %w", name, ErrRecordNotFound)
	}

	return nil
}

// All returns every ledger record in insertion order.
func (l *SQL) All(ctx context.Context) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, applied_on FROM schema_migrations ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	var records []Record

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.AppliedOn); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning applied migrations: %w", err)
	}

	return records, nil
}
