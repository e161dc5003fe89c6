package ledger

import "errors"

// ErrDuplicateRecord indicates a unit was recorded as applied twice.
var ErrDuplicateRecord = errors.New("migration already recorded in schema_migrations")

// ErrRecordNotFound indicates no ledger record exists for the unit.
var ErrRecordNotFound = errors.New("migration not recorded in schema_migrations")

// ErrInitialization indicates the schema_migrations table could not be created.
var ErrInitialization = errors.New("creating schema_migrations table")
