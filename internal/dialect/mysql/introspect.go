package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sediment-db/sediment/schema"
)

// Introspector reads the live schema of the DSN's current database.
type Introspector struct {
	db *sql.DB
}

// liveColumnsSQL lists every column of every table in the current
// database, in declaration order, excluding the ledger's own table.
const liveColumnsSQL = `
SELECT c.table_name,
       c.column_name,
       UPPER(c.data_type),
       c.is_nullable = 'YES',
       COALESCE(c.column_default, ''),
       c.column_key = 'PRI'
FROM information_schema.columns c
WHERE c.table_schema = DATABASE()
  AND c.table_name <> 'schema_migrations'
ORDER BY c.table_name, c.ordinal_position`

// LiveSchema returns the tables and columns the database actually has.
func (i *Introspector) LiveSchema(ctx context.Context) (schema.Snapshot, error) {
	rows, err := i.db.QueryContext(ctx, liveColumnsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}
	defer rows.Close()

	snap := make(schema.Snapshot)

	for rows.Next() {
		var (
			tableName string
			col       schema.Column
		)

		if err := rows.Scan(&tableName, &col.Name, &col.Type, &col.Nullable, &col.Default, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("%w: scanning column row: %w", schema.ErrIntrospection, err)
		}

		table := snap[tableName]
		table.Name = tableName
		table.Columns = append(table.Columns, col)
		snap[tableName] = table
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}

	return snap, nil
}
