package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sediment-db/sediment/schema"
)

// Introspector reads the live schema from sqlite_master and the
// pragma_table_info table-valued function.
type Introspector struct {
	db *sql.DB
}

// liveTablesSQL lists user tables, excluding SQLite's own bookkeeping and
// the ledger table.
const liveTablesSQL = `
SELECT name FROM sqlite_master
WHERE type = 'table'
  AND name NOT LIKE 'sqlite_%'
  AND name <> 'schema_migrations'
ORDER BY name`

// LiveSchema returns the tables and columns the database actually has.
func (i *Introspector) LiveSchema(ctx context.Context) (schema.Snapshot, error) {
	names, err := i.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	snap := make(schema.Snapshot, len(names))

	for _, name := range names {
		table, err := i.tableInfo(ctx, name)
		if err != nil {
			return nil, err
		}

		snap[name] = table
	}

	return snap, nil
}

func (i *Introspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, liveTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning table row: %w", schema.ErrIntrospection, err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}

	return names, nil
}

// tableInfo reads one table's columns in declaration order.
func (i *Introspector) tableInfo(ctx context.Context, name string) (schema.Table, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT name, UPPER(type), "notnull", COALESCE(dflt_value, ''), pk FROM pragma_table_info(?)`,
		name,
	)
	if err != nil {
		return schema.Table{}, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}
	defer rows.Close()

	table := schema.Table{Name: name}

	for rows.Next() {
		var (
			col     schema.Column
			notNull int
			pk      int
		)

		if err := rows.Scan(&col.Name, &col.Type, &notNull, &col.Default, &pk); err != nil {
			return schema.Table{}, fmt.Errorf("%w: scanning column row: %w", schema.ErrIntrospection, err)
		}

		col.Nullable = notNull == 0
		col.PrimaryKey = pk > 0
		table.Columns = append(table.Columns, col)
	}

	if err := rows.Err(); err != nil {
		return schema.Table{}, fmt.Errorf("%w: %w", schema.ErrIntrospection, err)
	}

	return table, nil
}
