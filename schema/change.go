package schema

import "fmt"

// ChangeKind identifies the kind of difference between two snapshots.
type ChangeKind int

// Change kinds produced by diffing a declared schema against a live one.
const (
	ChangeCreateTable ChangeKind = iota
	ChangeDropTable
	ChangeAddColumn
	ChangeDropColumn
)

// String returns the kind's name as used in logs and generated output.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCreateTable:
		return "create_table"
	case ChangeDropTable:
		return "drop_table"
	case ChangeAddColumn:
		return "add_column"
	case ChangeDropColumn:
		return "drop_column"
	}

	return fmt.Sprintf("change(%d)", int(k))
}

// Change describes one difference between a declared and a live schema.
// For ChangeDropColumn, Column holds the live definition so the reverse
// direction can restore it.
type Change struct {
	Kind   ChangeKind
	Table  string
	Column Column // ChangeAddColumn, ChangeDropColumn
	Def    Table  // ChangeCreateTable, ChangeDropTable
}
