// Package mysql implements the MySQL dialect on database/sql with the
// go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/ledger"
)

func init() { //nolint:gochecknoinits // dialect registration
	dialect.Register("mysql", Open)
}

// createLedgerSQL is the MySQL DDL for the schema_migrations table.
const createLedgerSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    id          BIGINT AUTO_INCREMENT PRIMARY KEY,
    name        VARCHAR(255) NOT NULL UNIQUE,
    applied_on  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// ER_DUP_ENTRY.
const dupEntryErrno = 1062

// Open connects to a MySQL DSN and builds its target bundle. The DSN is
// normalized to parse time columns and allow multi-statement migration
// files.
func Open(ctx context.Context, url string, _ dialect.Options) (*dialect.Target, error) {
	cfg, err := mysql.ParseDSN(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	cfg.ParseTime = true
	cfg.MultiStatements = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

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

// isDuplicate reports whether err is MySQL's duplicate-entry violation.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError

	return errors.As(err, &myErr) && myErr.Number == dupEntryErrno
}
