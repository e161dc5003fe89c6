package migration

import (
	"fmt"

	"github.com/sediment-db/sediment/schema"
)

// OperationKind identifies what an Operation does.
type OperationKind int

// Operation kinds a unit can collect.
const (
	OpRaw OperationKind = iota
	OpCreateTable
	OpDropTable
	OpAddColumn
	OpDropColumn
	OpAddIndex
	OpDropIndex
)

// String returns the kind's name as used in errors and events.
func (k OperationKind) String() string {
	switch k {
	case OpRaw:
		return "raw_sql"
	case OpCreateTable:
		return "create_table"
	case OpDropTable:
		return "drop_table"
	case OpAddColumn:
		return "add_column"
	case OpDropColumn:
		return "drop_column"
	case OpAddIndex:
		return "add_index"
	case OpDropIndex:
		return "drop_index"
	}

	return fmt.Sprintf("operation(%d)", int(k))
}

// Operation is a single schema change or raw statement recorded by a unit.
// Only the fields relevant to Kind are set.
type Operation struct {
	Kind   OperationKind
	SQL    string        // OpRaw
	Table  string        // target table name for everything except OpRaw
	Column schema.Column // OpAddColumn; OpDropColumn sets Name only
	Index  schema.Index  // OpAddIndex; OpDropIndex sets Name only
	Def    schema.Table  // OpCreateTable
}
