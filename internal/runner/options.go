package runner

// Direction selects which way a run moves the schema.
type Direction int

// Run directions.
const (
	DirectionUp Direction = iota
	DirectionDown
)

// String returns "up" or "down".
func (d Direction) String() string {
	if d == DirectionDown {
		return "down"
	}

	return "up"
}

// Options are the per-run knobs.
type Options struct {
	Direction   Direction
	Migration   string // run exactly this unit, bypassing the watermark
	Fake        bool   // render operations without executing or recording
	Force       bool   // re-run units the ledger already records
	Transaction bool   // wrap each unit's operations in one transaction
}

// DefaultOptions returns an up sweep with transactions enabled.
func DefaultOptions() Options {
	return Options{Direction: DirectionUp, Transaction: true}
}
