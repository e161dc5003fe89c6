//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/dialect/postgres"
	"github.com/sediment-db/sediment/internal/runner"
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

// openTarget starts a PostgreSQL container and opens the postgres dialect
// target against it.
func openTarget(t *testing.T) *dialect.Target {
	t.Helper()

	target, err := postgres.Open(context.Background(), SetupPostgresDSN(t), dialect.Options{})
	require.NoError(t, err)

	t.Cleanup(target.Close)

	return target
}

// blogUnits registers the units the lifecycle tests sweep: two tables and
// a column addition, each with a matching down direction.
func blogUnits(t *testing.T) *migration.Registry {
	t.Helper()

	reg := migration.NewRegistry()

	require.NoError(t, reg.Add("0001_create_users",
		func(c *migration.Collector) {
			c.Collect(c.CreateTable(schema.Table{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "SERIAL", PrimaryKey: true},
					{Name: "name", Type: "TEXT"},
				},
			}))
		},
		func(c *migration.Collector) {
			c.Collect(c.DropTable("users"))
		},
	))

	require.NoError(t, reg.Add("0002_create_posts",
		func(c *migration.Collector) {
			c.Collect(
				c.CreateTable(schema.Table{
					Name: "posts",
					Columns: []schema.Column{
						{Name: "id", Type: "SERIAL", PrimaryKey: true},
						{Name: "title", Type: "TEXT"},
					},
				}),
				c.AddIndex("posts", schema.Index{Name: "posts_title_idx", Columns: []string{"title"}}),
			)
		},
		func(c *migration.Collector) {
			c.Collect(c.DropTable("posts"))
		},
	))

	require.NoError(t, reg.Add("0003_add_email",
		func(c *migration.Collector) {
			c.Collect(c.AddColumn("users", schema.Column{Name: "email", Type: "TEXT", Nullable: true}))
		},
		func(c *migration.Collector) {
			c.Collect(c.DropColumn("users", "email"))
		},
	))

	return reg
}

func TestRun_sweep_appliesEverythingInOrder(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	run := runner.New(blogUnits(t), target.Backend, target.Ledger)

	summary, err := run.Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "0001_create_users", records[0].Name)
	assert.Equal(t, "0002_create_posts", records[1].Name)
	assert.Equal(t, "0003_add_email", records[2].Name)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)

	users, ok := live["users"]
	require.True(t, ok)

	_, ok = users.Column("email")
	assert.True(t, ok)

	_, ok = live["posts"]
	assert.True(t, ok)
}

func TestRun_secondSweep_skipsViaWatermark(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()
	reg := blogUnits(t)

	_, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)

	var kinds []string

	run := runner.New(reg, target.Backend, target.Ledger,
		runner.WithSink(func(e runner.Event) { kinds = append(kinds, e.Kind) }),
	)

	summary, err := run.Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Applied)

	for _, res := range summary.Results {
		assert.Equal(t, runner.StateSkipped, res.State)
	}

	assert.Contains(t, kinds, runner.EventLastApplied)
	assert.Contains(t, kinds, runner.EventSkipped)
	assert.NotContains(t, kinds, runner.EventAttempting)
}

func TestRun_force_rerunsRecordedUnit(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	reg := migration.NewRegistry()
	require.NoError(t, reg.Add("0001_create_accounts",
		func(c *migration.Collector) {
			c.Collect(c.CreateTable(schema.Table{
				Name: "accounts",
				Columns: []schema.Column{
					{Name: "id", Type: "SERIAL", PrimaryKey: true},
					{Name: "name", Type: "TEXT", Nullable: true},
				},
			}))
		},
		nil,
	))
	require.NoError(t, reg.Add("0002_backfill_names",
		func(c *migration.Collector) {
			c.Collect(c.Raw("UPDATE accounts SET name = '' WHERE name IS NULL"))
		},
		nil,
	))

	_, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)

	// Without force the targeted unit is rejected as already applied.
	var kinds []string

	run := runner.New(reg, target.Backend, target.Ledger,
		runner.WithSink(func(e runner.Event) { kinds = append(kinds, e.Kind) }),
	)

	opts := runner.DefaultOptions()
	opts.Migration = "0002_backfill_names"

	summary, err := run.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Applied)
	assert.Contains(t, kinds, runner.EventAlreadyApplied)

	// With force it runs again and the ledger keeps a single record.
	opts.Force = true

	summary, err = run.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)

	count := 0

	for _, r := range records {
		if r.Name == "0002_backfill_names" {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestRun_fake_leavesDatabaseUntouched(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	var previewed []string

	run := runner.New(blogUnits(t), target.Backend, target.Ledger,
		runner.WithSink(func(e runner.Event) {
			if e.Kind == runner.EventOperation {
				previewed = append(previewed, e.Detail)
			}
		}),
	)

	opts := runner.DefaultOptions()
	opts.Fake = true

	summary, err := run.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Applied)
	assert.NotEmpty(t, previewed)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestRun_down_revertsTargetedUnit(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()
	reg := blogUnits(t)

	_, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)

	opts := runner.DefaultOptions()
	opts.Direction = runner.DirectionDown
	opts.Migration = "0003_add_email"

	summary, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)

	users, ok := live["users"]
	require.True(t, ok)

	_, ok = users.Column("email")
	assert.False(t, ok)
}

func TestRun_failedUnit_stopsRunAndKeepsEarlierRecords(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	reg := migration.NewRegistry()
	require.NoError(t, reg.Add("0001_create_widgets",
		func(c *migration.Collector) {
			c.Collect(c.Raw("CREATE TABLE widgets (id SERIAL PRIMARY KEY)"))
		},
		nil,
	))
	require.NoError(t, reg.Add("0002_bad_reference",
		func(c *migration.Collector) {
			c.Collect(c.Raw("CREATE TABLE bad (id SERIAL, fk INTEGER REFERENCES nonexistent(id))"))
		},
		nil,
	))

	summary, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.Error(t, err)

	var merr *runner.MigrationError

	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "0002_bad_reference", merr.Unit)
	assert.Equal(t, 1, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0001_create_widgets", records[0].Name)
}

func TestRun_transaction_rollsBackFailedUnit(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	// Both operations run in one transaction; the second fails at
	// execution, so the first must leave no trace.
	reg := migration.NewRegistry()
	require.NoError(t, reg.Add("0001_two_steps",
		func(c *migration.Collector) {
			c.Collect(
				c.Raw("CREATE TABLE gadgets (id SERIAL PRIMARY KEY)"),
				c.Raw("ALTER TABLE nonexistent ADD COLUMN x TEXT"),
			)
		},
		nil,
	))

	_, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.Error(t, err)

	live, err := target.Introspector.LiveSchema(ctx)
	require.NoError(t, err)

	_, ok := live["gadgets"]
	assert.False(t, ok)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_concurrentIndex_escapesTransaction(t *testing.T) {
	t.Parallel()

	target := openTarget(t)
	ctx := context.Background()

	// CREATE INDEX CONCURRENTLY refuses to run inside a transaction
	// block, so a successful run proves the statement was routed around
	// the transaction.
	reg := migration.NewRegistry()
	require.NoError(t, reg.Add("0001_create_items",
		func(c *migration.Collector) {
			c.Collect(c.CreateTable(schema.Table{
				Name: "items",
				Columns: []schema.Column{
					{Name: "id", Type: "SERIAL", PrimaryKey: true},
					{Name: "name", Type: "TEXT", Nullable: true},
				},
			}))
		},
		nil,
	))
	require.NoError(t, reg.Add("0002_index_items",
		func(c *migration.Collector) {
			c.Collect(c.Raw("CREATE INDEX CONCURRENTLY idx_items_name ON items (name)"))
		},
		nil,
	))

	summary, err := runner.New(reg, target.Backend, target.Ledger).Run(ctx, runner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Applied)

	records, err := target.Ledger.All(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
