package runner

import (
	"errors"
	"fmt"
)

// MigrationError attaches the unit name to a failure inside a run.
type MigrationError struct {
	Unit string
	Err  error
}

// Error returns "migration <unit>: <cause>".
func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s: %v", e.Unit, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// ErrDownRequiresTarget rejects down runs without an explicit target unit.
var ErrDownRequiresTarget = errors.New("down requires a target migration")

// ErrUnknownOperation indicates an operation kind the backend cannot render.
var ErrUnknownOperation = errors.New("cannot determine operation type")
