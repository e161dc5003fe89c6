package runner

import "time"

// Event kinds reported through the Sink.
const (
	EventLastApplied    = "last_applied"
	EventAttempting     = "attempting"
	EventAlreadyApplied = "already_applied"
	EventForcedRerun    = "forced_rerun"
	EventOperation      = "operation"
	EventApplied        = "applied"
	EventSkipped        = "skipped"
	EventFailed         = "failed"
	EventSummary        = "summary"
)

// Event is emitted as a run progresses. Presentation is the sink's concern;
// the runner never prints.
type Event struct {
	Kind     string
	Unit     string
	Detail   string        // direction for attempting, SQL for operation
	Count    int           // EventSummary: units run
	Duration time.Duration // EventApplied
	Err      error         // EventFailed
}

// Sink receives run events.
type Sink func(Event)
