package migration

import "github.com/sediment-db/sediment/schema"

// Collector accumulates the operations a migration unit wants to run. A
// direction function receives the collector, builds operations with its
// helper methods, and hands them over in a single Collect call:
//
//	func up(c *migration.Collector) {
//		c.Collect(
//			c.AddColumn("users", schema.Column{Name: "email", Type: "TEXT"}),
//			c.Raw("UPDATE users SET email = '' WHERE email IS NULL"),
//		)
//	}
type Collector struct {
	ops []Operation
}

// Collect replaces the collector's operation list. A direction function
// calls it once with every operation it wants, in execution order.
func (c *Collector) Collect(ops ...Operation) {
	c.ops = ops
}

// Operations returns the collected operations in collection order.
func (c *Collector) Operations() []Operation {
	return c.ops
}

// Raw returns an operation that executes sql verbatim.
func (c *Collector) Raw(sql string) Operation {
	return Operation{Kind: OpRaw, SQL: sql}
}

// CreateTable returns an operation that creates the given table.
func (c *Collector) CreateTable(def schema.Table) Operation {
	return Operation{Kind: OpCreateTable, Table: def.Name, Def: def}
}

// DropTable returns an operation that drops the named table.
func (c *Collector) DropTable(name string) Operation {
	return Operation{Kind: OpDropTable, Table: name}
}

// AddColumn returns an operation that adds col to table.
func (c *Collector) AddColumn(table string, col schema.Column) Operation {
	return Operation{Kind: OpAddColumn, Table: table, Column: col}
}

// DropColumn returns an operation that drops the named column from table.
func (c *Collector) DropColumn(table, column string) Operation {
	return Operation{Kind: OpDropColumn, Table: table, Column: schema.Column{Name: column}}
}

// AddIndex returns an operation that creates idx on table.
func (c *Collector) AddIndex(table string, idx schema.Index) Operation {
	return Operation{Kind: OpAddIndex, Table: table, Index: idx}
}

// DropIndex returns an operation that drops the named index from table.
func (c *Collector) DropIndex(table, name string) Operation {
	return Operation{Kind: OpDropIndex, Table: table, Index: schema.Index{Name: name}}
}
