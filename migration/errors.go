package migration

import "errors"

// ErrUnitNotFound indicates no unit exists under the requested name.
var ErrUnitNotFound = errors.New("migration unit not found")

// ErrDirectionNotDefined indicates the unit does not define the requested direction.
var ErrDirectionNotDefined = errors.New("direction not defined by migration unit")

// ErrDiscovery indicates a unit source could not be scanned.
var ErrDiscovery = errors.New("discovering migration units")

// ErrInvalidName indicates a unit name without a numeric prefix and label.
var ErrInvalidName = errors.New("unit name must look like 0001_label")

// ErrDuplicateUnit indicates two units were registered under one name.
var ErrDuplicateUnit = errors.New("unit already registered")
