package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Ledger backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Postgres ledger on the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureInitialized creates the schema_migrations table if it does not exist.
func (l *Postgres) EnsureInitialized(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, createLedgerSQL); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	return nil
}

// LastApplied returns the most recently inserted ledger record.
func (l *Postgres) LastApplied(ctx context.Context) (Record, bool, error) {
	var r Record

	err := l.pool.QueryRow(ctx,
		`SELECT id, name, applied_on FROM schema_migrations ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.Name, &r.AppliedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("querying last applied migration: %w", err)
	}

	return r, true, nil
}

// IsApplied checks whether a migration name has been recorded as applied.
func (l *Postgres) IsApplied(ctx context.Context, name string) (bool, error) {
	var exists bool

	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking if migration %s is applied: %w", name, err)
	}

	return exists, nil
}

// RecordApplied inserts a ledger row for name. Inserting the same name
// twice is an error, never an update.
func (l *Postgres) RecordApplied(ctx context.Context, name string) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO schema_migrations (name) VALUES ($1)`,
		name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("migration %s: %w", name, ErrDuplicateRecord)
		}

		return fmt.Errorf("recording migration %s as applied: %w", name, err)
	}

	return nil
}

// RecordReverted deletes the ledger row for name.
func (l *Postgres) RecordReverted(ctx context.Context, name string) error {
	tag, err := l.pool.Exec(ctx,
		`DELETE FROM schema_migrations WHERE name = $1`,
		name,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as reverted: %w", name, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("migration %s: %w", name, ErrRecordNotFound)
	}

	return nil
}

// All returns every ledger record in insertion order.
func (l *Postgres) All(ctx context.Context) ([]Record, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, name, applied_on FROM schema_migrations ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		if scanErr := row.Scan(&r.ID, &r.Name, &r.AppliedOn); scanErr != nil {
			return Record{}, fmt.Errorf("scanning ledger row: %w", scanErr)
		}

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning applied migrations: %w", err)
	}

	return records, nil
}
