package migration

import "fmt"

// Registry holds units registered in-binary, usually from init functions
// in a project's migrations package. Registration happens at init time;
// the registry is read-only afterwards.
type Registry struct {
	handles map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Add registers a unit under name. The name must match the unit naming
// pattern and must not already be registered.
func (r *Registry) Add(name string, up, down Func) error {
	if _, ok := ParseName(name); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if _, dup := r.handles[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, name)
	}

	r.handles[name] = Handle{Up: up, Down: down}

	return nil
}

// Discover returns the registered units sorted by sequence.
func (r *Registry) Discover() ([]Unit, error) {
	units := make([]Unit, 0, len(r.handles))

	for name := range r.handles {
		seq, _ := ParseName(name)
		units = append(units, Unit{Seq: seq, Name: name, Source: "registry"})
	}

	return Sort(units), nil
}

// Load returns the handle registered under name.
func (r *Registry) Load(name string) (Handle, error) {
	h, ok := r.handles[name]
	if !ok {
		return Handle{}, fmt.Errorf("%s: %w", name, ErrUnitNotFound)
	}

	return h, nil
}

// defaultRegistry backs the package-level Register that migration files call.
var defaultRegistry = NewRegistry() //nolint:gochecknoglobals // package-level registration target

// Register adds a unit to the default registry. It is meant to be called
// from init functions of migration files and panics on invalid or duplicate
// names, which are programmer errors.
func Register(name string, up, down Func) {
	if err := defaultRegistry.Add(name, up, down); err != nil {
		panic(err)
	}
}

// Default returns the registry that package-level Register feeds.
func Default() *Registry {
	return defaultRegistry
}
