// Package ledger records which migration units have been applied. Every
// supported database stores the same table, schema_migrations, holding one
// row per applied unit.
package ledger

import (
	"context"
	"time"
)

// Record is one row of the schema_migrations table.
type Record struct {
	ID        int64
	Name      string
	AppliedOn time.Time
}

// Ledger tracks applied migration units. LastApplied reports the most
// recently inserted record (insertion order, not name order).
type Ledger interface {
	EnsureInitialized(ctx context.Context) error
	LastApplied(ctx context.Context) (Record, bool, error)
	IsApplied(ctx context.Context, name string) (bool, error)
	RecordApplied(ctx context.Context, name string) error
	RecordReverted(ctx context.Context, name string) error
	All(ctx context.Context) ([]Record, error)
}
