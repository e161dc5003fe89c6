//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/dialect/sqlite"
	"github.com/sediment-db/sediment/internal/ledger"
	"github.com/sediment-db/sediment/internal/runner"
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

// sqliteUnits registers units with SQLite column types.
func sqliteUnits(t *testing.T) *migration.Registry {
	t.Helper()

	reg := migration.NewRegistry()

	require.NoError(t, reg.Add("0001_create_notes",
		func(c *migration.Collector) {
			c.Collect(c.CreateTable(schema.Table{
				Name: "notes",
				Columns: []schema.Column{
					{Name: "id", Type: "INTEGER", PrimaryKey: true},
					{Name: "body", Type: "TEXT"},
				},
			}))
		},
		func(c *migration.Collector) {
			c.Collect(c.DropTable("notes"))
		},
	))

	require.NoError(t, reg.Add("0002_add_pinned",
		func(c *migration.Collector) {
			c.Collect(c.AddColumn("notes", schema.Column{
				Name: "pinned", Type: "INTEGER", Nullable: true, Default: "0",
			}))
		},
		func(c *migration.Collector) {
			c.Collect(c.DropColumn("notes", "pinned"))
		},
	))

	return reg
}

func TestSQLite_fullLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	target, err := sqlite.Open(ctx, ":memory:", dialect.Options{})
	require.NoError(t, err)

	t.Cleanup(target.Close)

	reg := sqliteUnits(t)
	run := runner.New(reg, target.Backend, target.Ledger)

	summary, err := run.Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0001_create_notes", records[0].Name)
	assert.Equal(t, "0002_add_pinned", records[1].Name)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)

	notes, ok := live["notes"]
	require.True(t, ok)

	pinned, ok := notes.Column("pinned")
	require.True(t, ok)
	assert.True(t, pinned.Nullable)

	// Revert the column addition.
	opts := runner.DefaultOptions()
	opts.Direction = runner.DirectionDown
	opts.Migration = "0002_add_pinned"

	_, err = run.Run(ctx, opts)
	require.NoError(t, err)

	live, err = target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)

	notes = live["notes"]
	_, ok = notes.Column("pinned")
	assert.False(t, ok)

	// A second sweep has nothing above the watermark.
	summary, err = run.Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Applied)
}

func TestSQLite_duplicateLedgerRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	target, err := sqlite.Open(ctx, ":memory:", dialect.Options{})
	require.NoError(t, err)

	t.Cleanup(target.Close)

	require.NoError(t, target.Ledger.EnsureInitialized(ctx))
	require.NoError(t, target.Ledger.RecordApplied(ctx, "0001_create_notes"))

	err = target.Ledger.RecordApplied(ctx, "0001_create_notes")
	require.ErrorIs(t, err, ledger.ErrDuplicateRecord)
}
