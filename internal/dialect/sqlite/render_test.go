package sqlite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sediment-db/sediment/internal/dialect/sqlite"
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

func TestBackendRender(t *testing.T) {
	t.Parallel()

	b := &sqlite.Backend{}
	c := &migration.Collector{}

	tests := []struct {
		name string
		op   migration.Operation
		want string
	}{
		{
			name: "drop index is database scoped",
			op:   c.DropIndex("users", "users_email_idx"),
			want: "DROP INDEX users_email_idx",
		},
		{
			name: "create table",
			op: c.CreateTable(schema.Table{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "INTEGER", PrimaryKey: true},
					{Name: "email", Type: "TEXT"},
				},
			}),
			want: "CREATE TABLE users (\n" +
				"    id INTEGER PRIMARY KEY,\n" +
				"    email TEXT NOT NULL\n" +
				")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := b.Render(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
