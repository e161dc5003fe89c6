package generate

import "errors"

var (
	// ErrAmbiguousField marks a declared column whose definition cannot be
	// resolved. Diff reports it and moves on; generation is best effort.
	ErrAmbiguousField = errors.New("cannot resolve column definition")

	// ErrUnknownChange indicates a change kind the emitter cannot render.
	ErrUnknownChange = errors.New("cannot render change kind")
)
