// Package sqlite implements the SQLite dialect on database/sql with the
// mattn/go-sqlite3 driver. The URL is a file path, ":memory:", or a
// file: URI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/ledger"
)

func init() { //nolint:gochecknoinits // dialect registration
	dialect.Register("sqlite", Open)
	dialect.Register("sqlite3", Open)
}

// createLedgerSQL is the SQLite DDL for the schema_migrations table.
const createLedgerSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    applied_on  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Open opens a SQLite database file and builds its target bundle.
func Open(ctx context.Context, url string, _ dialect.Options) (*dialect.Target, error) {
	db, err := sql.Open("sqlite3", url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// In-memory databases vanish when their connection closes; pin the
	// pool to one connection so every statement sees the same database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &dialect.Target{
		Backend: &Backend{db: db},
		Ledger: ledger.NewSQL(db, ledger.Grammar{
			CreateTableSQL: createLedgerSQL,
			IsDuplicate:    isDuplicate,
		}),
		Introspector: &Introspector{db: db},
		Close:        func() { db.Close() }, //nolint:errcheck,gosec // close on shutdown
	}, nil
}

// isDuplicate reports whether err is SQLite's unique-constraint violation.
func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
