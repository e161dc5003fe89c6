//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/dialect/postgres"
)

func TestOpen_validConnection_succeeds(t *testing.T) {
	t.Parallel()

	dsn := SetupPostgresDSN(t)
	ctx := context.Background()

	target, err := postgres.Open(ctx, dsn, dialect.Options{})
	require.NoError(t, err)

	t.Cleanup(target.Close)

	// The bundle is live: the ledger can initialize its table.
	err = target.Ledger.EnsureInitialized(ctx)
	require.NoError(t, err)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestOpen_invalidURL_returnsError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, err := postgres.Open(ctx, "not-valid", dialect.Options{})

	require.ErrorIs(t, err, postgres.ErrInvalidDatabaseURL)
}
