package sqlite

import (
	"fmt"
	"strings"

	"github.com/sediment-db/sediment/internal/runner"
	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

// Render returns the SQLite DDL for op without executing it.
func (b *Backend) Render(op migration.Operation) (string, error) {
	switch op.Kind {
	case migration.OpRaw:
		return op.SQL, nil
	case migration.OpCreateTable:
		return renderCreateTable(op.Def), nil
	case migration.OpDropTable:
		return "DROP TABLE " + op.Table, nil
	case migration.OpAddColumn:
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", op.Table, renderColumn(op.Column)), nil
	case migration.OpDropColumn:
		return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", op.Table, op.Column.Name), nil
	case migration.OpAddIndex:
		return renderCreateIndex(op.Table, op.Index), nil
	case migration.OpDropIndex:
		return "DROP INDEX " + op.Index.Name, nil
	}

	return "", fmt.Errorf("%s: %w", op.Kind, runner.ErrUnknownOperation)
}

func renderColumn(col schema.Column) string {
	var sb strings.Builder

	sb.WriteString(col.Name)
	sb.WriteString(" ")
	sb.WriteString(col.Type)

	if col.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	} else if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}

	if col.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(col.Default)
	}

	return sb.String()
}

func renderCreateTable(def schema.Table) string {
	cols := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		cols = append(cols, "    "+renderColumn(col))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", def.Name, strings.Join(cols, ",\n"))
}

func renderCreateIndex(table string, idx schema.Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}

	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, idx.Name, table, strings.Join(idx.Columns, ", "))
}
