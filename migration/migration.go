// Package migration defines migration units and the ways they are
// discovered: registered in-binary from init functions or loaded from
// SQL files on disk.
package migration

import (
	"regexp"
	"sort"
)

// namePattern matches unit names: a numeric sequence prefix, an underscore,
// and a label (e.g., 0002_add_email).
var namePattern = regexp.MustCompile(`^(\d+)_(\w+)$`) //nolint:gochecknoglobals // compiled once

// Unit identifies a single discovered migration.
type Unit struct {
	Seq    Sequence // numeric prefix, e.g. "0002"
	Name   string   // full unit name, e.g. "0002_add_email"
	Source string   // where the unit came from: a file path or "registry"
}

// Func is one direction of a migration unit. It records the operations to
// run on the collector it receives.
type Func func(*Collector)

// Handle exposes a loaded unit's capabilities. A nil direction means the
// unit does not define it.
type Handle struct {
	Up   Func
	Down Func
}

// Loader is a source of migration units.
type Loader interface {
	Discover() ([]Unit, error)
	Load(name string) (Handle, error)
}

// ParseName splits a unit name into its sequence prefix, reporting whether
// the name is well formed.
func ParseName(name string) (Sequence, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}

	return Sequence(m[1]), true
}

// Sort returns a new slice of units ordered by sequence, then name.
// The sort is stable to preserve discovery order for equal sequences.
func Sort(units []Unit) []Unit {
	sorted := make([]Unit, len(units))
	copy(sorted, units)

	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Seq.Compare(sorted[j].Seq); c != 0 {
			return c < 0
		}

		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
