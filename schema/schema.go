// Package schema models database schemas as dialect-neutral snapshots:
// the schema a project declares as its source of truth, and the schema a
// live database actually has.
package schema

import "sort"

// Column describes a single table column. Type is the column's type as it
// appears in DDL for the project's target dialect.
type Column struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Nullable   bool   `yaml:"nullable"`
	Default    string `yaml:"default"`
	PrimaryKey bool   `yaml:"primary_key"`
}

// Index describes a secondary index on a table.
type Index struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

// Table describes a table: its columns in declaration order and its indexes.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
	Indexes []Index  `yaml:"indexes"`
}

// Column returns the column with the given name, if the table has one.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return Column{}, false
}

// Snapshot is a set of tables keyed by table name.
type Snapshot map[string]Table

// TableNames returns the snapshot's table names in sorted order.
func (s Snapshot) TableNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
