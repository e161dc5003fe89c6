package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sediment-db/sediment/schema"
)

// Introspector reads the live schema from the public schema of a
// PostgreSQL database.
type Introspector struct {
	pool *pgxpool.Pool
}

// liveColumnsSQL lists every column of every base table in the public
// schema, in declaration order. The ledger's own table is not part of the
// application schema and is excluded.
const liveColumnsSQL = `
SELECT c.table_name,
       c.column_name,
       UPPER(c.data_type),
       c.is_nullable = 'YES',
       COALESCE(c.column_default, ''),
       EXISTS (
           SELECT 1
           FROM information_schema.table_constraints tc
           JOIN information_schema.key_column_usage kcu
             ON kcu.constraint_name = tc.constraint_name
            AND kcu.table_schema = tc.table_schema
           WHERE tc.table_schema = c.table_schema
             AND tc.table_name = c.table_name
             AND tc.constraint_type = 'PRIMARY KEY'
             AND kcu.column_name = c.column_name
       )
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema = 'public'
  AND t.table_type = 'BASE TABLE'
  AND c.table_name <> 'schema_migrations'
ORDER BY c.table_name, c.ordinal_position`

// LiveSchema returns the tables and columns the database actually has.
func (i *Introspector) LiveSchema(ctx context.Context) (schema.Snapshot, error) {
	rows, err := i.pool.Query(ctx, liveColumnsSQL)
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
