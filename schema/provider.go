package schema

import "context"

// Provider supplies the schema a project declares as its source of truth.
type Provider interface {
	DeclaredSchema() (Snapshot, error)
}

// Introspector reports the schema a live database actually has.
// Implementations fill table columns; index introspection is not required.
type Introspector interface {
	LiveSchema(ctx context.Context) (Snapshot, error)
}
