// Package dialect maps database engine names to the bundles that serve
// them: a runner backend, a ledger, and a schema introspector. Engine
// packages register themselves from init; callers import them blank and
// pick one by name at run time.
package dialect

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sediment-db/sediment/internal/ledger"
	"github.com/sediment-db/sediment/internal/runner"
	"github.com/sediment-db/sediment/schema"
)

// Target bundles everything a migration run needs for one database.
type Target struct {
	Backend      runner.Backend
	Ledger       ledger.Ledger
	Introspector schema.Introspector
	Close        func()
}

// Options carry engine-independent tuning applied when a target is opened.
// Engines that have no equivalent of a setting ignore it.
type Options struct {
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// Opener connects to a database URL and builds its Target.
type Opener func(ctx context.Context, url string, opts Options) (*Target, error)

// openers is populated by engine packages from init.
var openers = make(map[string]Opener) //nolint:gochecknoglobals // registration target

// Register makes an opener available under name. Registering the same name
// twice panics; engines register from init, so a collision is a programmer
// error.
func Register(name string, open Opener) {
	if _, dup := openers[name]; dup {
		panic("dialect: Register called twice for " + name)
	}

	openers[name] = open
}

// Open connects to url using the named dialect.
func Open(ctx context.Context, name, url string, opts Options) (*Target, error) {
	open, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrUnknownDialect, name, strings.Join(Names(), ", "))
	}

	return open(ctx, url, opts)
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
