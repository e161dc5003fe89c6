package generate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sediment-db/sediment/internal/generate"
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

type fakeProvider struct {
	snap schema.Snapshot
	err  error
}

func (p *fakeProvider) DeclaredSchema() (schema.Snapshot, error) {
	return p.snap, p.err
}

type fakeIntrospector struct {
	snap schema.Snapshot
	err  error
}

func (i *fakeIntrospector) LiveSchema(_ context.Context) (schema.Snapshot, error) {
	return i.snap, i.err
}

func table(name string, cols ...schema.Column) schema.Table {
	return schema.Table{Name: name, Columns: cols}
}

func TestGeneratorDiff(t *testing.T) {
	t.Parallel()

	id := schema.Column{Name: "id", Type: "BIGSERIAL", PrimaryKey: true}
	name := schema.Column{Name: "name", Type: "TEXT"}
	email := schema.Column{Name: "email", Type: "TEXT", Nullable: true}
	legacy := schema.Column{Name: "legacy", Type: "INTEGER", Default: "0"}

	tests := []struct {
		name     string
		declared schema.Snapshot
		live     schema.Snapshot
		want     []schema.Change
	}{
		{
			name:     "new table",
			declared: schema.Snapshot{"users": table("users", id, name)},
			live:     schema.Snapshot{},
			want: []schema.Change{
				{Kind: schema.ChangeCreateTable, Table: "users", Def: table("users", id, name)},
			},
		},
		{
			name:     "added column",
			declared: schema.Snapshot{"users": table("users", id, name, email)},
			live:     schema.Snapshot{"users": table("users", id, name)},
			want: []schema.Change{
				{Kind: schema.ChangeAddColumn, Table: "users", Column: email},
			},
		},
		{
			name:     "removed column carries live definition",
			declared: schema.Snapshot{"users": table("users", id, name)},
			live:     schema.Snapshot{"users": table("users", id, name, legacy)},
			want: []schema.Change{
				{Kind: schema.ChangeDropColumn, Table: "users", Column: legacy},
			},
		},
		{
			name:     "identical schemas",
			declared: schema.Snapshot{"users": table("users", id, name)},
			live:     schema.Snapshot{"users": table("users", id, name)},
			want:     nil,
		},
		{
			name: "changed column becomes add and drop pair",
			declared: schema.Snapshot{
				"users": table("users", id, schema.Column{Name: "score", Type: "INTEGER"}),
			},
			live: schema.Snapshot{
				"users": table("users", id, schema.Column{Name: "score", Type: "BIGINT"}),
			},
			want: []schema.Change{
				{Kind: schema.ChangeAddColumn, Table: "users", Column: schema.Column{Name: "score", Type: "INTEGER"}},
				{Kind: schema.ChangeDropColumn, Table: "users", Column: schema.Column{Name: "score", Type: "BIGINT"}},
			},
		},
		{
			name:     "incomplete declared table ignored",
			declared: schema.Snapshot{"solo": table("solo", id)},
			live:     schema.Snapshot{},
			want:     nil,
		},
		{
			name:     "sparse live table treated as missing",
			declared: schema.Snapshot{"users": table("users", id, name)},
			live:     schema.Snapshot{"users": table("users", id)},
			want: []schema.Change{
				{Kind: schema.ChangeCreateTable, Table: "users", Def: table("users", id, name)},
			},
		},
		{
			name: "unresolvable column skipped",
			declared: schema.Snapshot{
				"users": table("users", id, name, schema.Column{Name: "mystery"}, email),
			},
			live: schema.Snapshot{"users": table("users", id, name)},
			want: []schema.Change{
				{Kind: schema.ChangeAddColumn, Table: "users", Column: email},
			},
		},
		{
			name: "tables diffed in name order",
			declared: schema.Snapshot{
				"zebras": table("zebras", id, name),
				"alpha":  table("alpha", id, name),
			},
			live: schema.Snapshot{},
			want: []schema.Change{
				{Kind: schema.ChangeCreateTable, Table: "alpha", Def: table("alpha", id, name)},
				{Kind: schema.ChangeCreateTable, Table: "zebras", Def: table("zebras", id, name)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := generate.New(
				&fakeProvider{snap: tt.declared},
				&fakeIntrospector{snap: tt.live},
				generate.WithLogger(zap.NewNop()),
			)

			got, err := g.Diff(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratorDiff_sourceErrors(t *testing.T) {
	t.Parallel()

	declErr := errors.New("schema file unreadable")
	liveErr := errors.New("connection refused")

	g := generate.New(&fakeProvider{err: declErr}, &fakeIntrospector{})
	_, err := g.Diff(context.Background())
	assert.ErrorIs(t, err, declErr)

	g = generate.New(&fakeProvider{snap: schema.Snapshot{}}, &fakeIntrospector{err: liveErr})
	_, err = g.Diff(context.Background())
	assert.ErrorIs(t, err, liveErr)
}

func TestEmit(t *testing.T) {
	t.Parallel()

	changes := []schema.Change{
		{
			Kind:  schema.ChangeCreateTable,
			Table: "tweets",
			Def: schema.Table{
				Name: "tweets",
				Columns: []schema.Column{
					{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
					{Name: "body", Type: "TEXT"},
				},
				Indexes: []schema.Index{
					{Name: "tweets_body_idx", Columns: []string{"body"}},
				},
			},
		},
		{
			Kind:   schema.ChangeAddColumn,
			Table:  "users",
			Column: schema.Column{Name: "email", Type: "TEXT", Nullable: true},
		},
		{
			Kind:   schema.ChangeDropColumn,
			Table:  "users",
			Column: schema.Column{Name: "legacy", Type: "INTEGER", Default: "0"},
		},
	}

	got, err := generate.Emit(changes, "0003", "sync_schema")
	require.NoError(t, err)

	want := `package migrations

import (
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

func up0003(c *migration.Collector) {
	c.Collect(
		c.CreateTable(schema.Table{
			Name: "tweets",
			Columns: []schema.Column{
				{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
				{Name: "body", Type: "TEXT"},
			},
		}),
		c.AddIndex("tweets", schema.Index{Name: "tweets_body_idx", Columns: []string{"body"}}),
		c.AddColumn("users", schema.Column{Name: "email", Type: "TEXT", Nullable: true}),
		c.DropColumn("users", "legacy"),
	)
}

func down0003(c *migration.Collector) {
	c.Collect(
		c.AddColumn("users", schema.Column{Name: "legacy", Type: "INTEGER", Default: "0"}),
		c.DropColumn("users", "email"),
		c.DropTable("tweets"),
	)
}

func init() {
	migration.Register("0003_sync_schema", up0003, down0003)
}
`

	assert.Equal(t, want, got)
}

func TestEmit_rejectsBadName(t *testing.T) {
	t.Parallel()

	_, err := generate.Emit(nil, "0001", "bad-name")
	assert.ErrorIs(t, err, migration.ErrInvalidName)
}

func TestNextSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		want  migration.Sequence
	}{
		{
			name:  "empty directory",
			files: nil,
			want:  "0001",
		},
		{
			name: "mixed go and sql units",
			files: []string{
				"0001_create_users.go",
				"0002_add_email.up.sql",
				"0002_add_email.down.sql",
				"README.md",
			},
			want: "0003",
		},
		{
			name:  "crosses a digit boundary",
			files: []string{"0009_add_tweets.go"},
			want:  "0010",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o600))
			}

			got, err := generate.NextSequence(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSequence_missingDir(t *testing.T) {
	t.Parallel()

	got, err := generate.NextSequence(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, migration.Sequence("0001"), got)
}
