package runner

import (
	"fmt"

	"github.com/sediment-db/sediment/migration"
)

// State is a unit's position in the run lifecycle.
type State int

// Lifecycle states. A unit moves Pending → Checked and from there to
// exactly one of Skipped, Applied (via Applying), or Failed. Watermark
// skips happen before the ledger check and jump straight to Skipped.
const (
	StatePending State = iota
	StateChecked
	StateSkipped
	StateApplying
	StateApplied
	StateFailed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateChecked:
		return "checked"
	case StateSkipped:
		return "skipped"
	case StateApplying:
		return "applying"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// Result is the outcome of one unit in a run.
type Result struct {
	Unit  migration.Unit
	State State
	Err   error
}

// Summary is what a run did. Applied counts units that reached StateApplied,
// fake previews included.
type Summary struct {
	Applied int
	Results []Result
}
