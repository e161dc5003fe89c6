// Package postgres implements the PostgreSQL dialect: a pgx-backed runner
// backend, ledger, and schema introspector.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/ledger"
)

const defaultMaxConns = 5

func init() { //nolint:gochecknoinits // dialect registration
	dialect.Register("postgres", Open)
	dialect.Register("postgresql", Open)
}

// Open connects to a PostgreSQL database URL and builds its target bundle.
func Open(ctx context.Context, url string, opts dialect.Options) (*dialect.Target, error) {
	pool, err := newPool(ctx, url)
	if err != nil {
		return nil, err
	}

	return &dialect.Target{
		Backend: &Backend{
			pool:             pool,
			lockTimeout:      opts.LockTimeout,
			statementTimeout: opts.StatementTimeout,
		},
		Ledger:       ledger.NewPostgres(pool),
		Introspector: &Introspector{pool: pool},
		Close:        pool.Close,
	}, nil
}

// newPool creates a pgx connection pool for the given database URL. It
// parses the connection string, sets a conservative max connection limit,
// and pings the database to verify connectivity.
func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	poolCfg.MaxConns = defaultMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return pool, nil
}
