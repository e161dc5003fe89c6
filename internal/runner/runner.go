// Package runner drives migration units through their lifecycle: discover,
// check against the ledger, execute, record.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/sediment-db/sediment/internal/ledger"
	"github.com/sediment-db/sediment/migration"
)

// Backend renders and executes migration operations for one database
// engine. Render must not touch the database; fake runs rely on that.
type Backend interface {
	Render(op migration.Operation) (string, error)
	RequiresAutoCommit(sql string) (bool, error)
	Transact(ctx context.Context, fn func(Session) error) error
	AutoCommit(ctx context.Context, fn func(Session) error) error
}

// Session executes statements, either inside a transaction or directly,
// depending on how the backend produced it.
type Session interface {
	Exec(ctx context.Context, sql string) error
}

// Runner coordinates migration runs against one database.
type Runner struct {
	loader         migration.Loader
	backend        Backend
	ledger         ledger.Ledger
	sink           Sink
	forceUnderFake bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets the event sink that narrates runs.
func WithSink(s Sink) Option {
	return func(r *Runner) { r.sink = s }
}

// WithForceUnderFake controls whether forced re-runs are previewed in fake
// mode (true, the default) or reported as already applied (false).
func WithForceUnderFake(b bool) Option {
	return func(r *Runner) { r.forceUnderFake = b }
}

// New creates a Runner over the given unit source, database backend, and
// ledger.
func New(loader migration.Loader, backend Backend, led ledger.Ledger, opts ...Option) *Runner {
	r := &Runner{
		loader:         loader,
		backend:        backend,
		ledger:         led,
		forceUnderFake: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes migration units according to opts and reports what happened.
// The ledger table is created if missing before anything else, fake runs
// included. When a specific unit caused the failure, the returned error is
// a *MigrationError naming it.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Direction == DirectionDown && opts.Migration == "" {
		return nil, ErrDownRequiresTarget
	}

	if err := r.ledger.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	watermark, err := r.watermark(ctx)
	if err != nil {
		return nil, err
	}

	units, err := r.selectUnits(opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	for i := range units {
		res, err := r.runUnit(ctx, units[i], opts, watermark)
		summary.Results = append(summary.Results, res)

		if err != nil {
			r.emit(Event{Kind: EventFailed, Unit: units[i].Name, Err: err})
			return summary, err
		}

		if res.State == StateApplied {
			summary.Applied++
		}
	}

	r.emit(Event{Kind: EventSummary, Count: summary.Applied})

	return summary, nil
}

// watermark returns the sequence at or below which sweep runs skip units:
// the numeric prefix of the most recently inserted ledger record. A missing
// record, or one whose name has no numeric prefix, leaves it empty.
func (r *Runner) watermark(ctx context.Context) (migration.Sequence, error) {
	last, ok, err := r.ledger.LastApplied(ctx)
	if err != nil {
		return "", err
	}

	if !ok {
		r.emit(Event{Kind: EventLastApplied, Detail: "none"})
		return "", nil
	}

	r.emit(Event{Kind: EventLastApplied, Unit: last.Name})

	seq, ok := migration.ParseName(last.Name)
	if !ok {
		return "", nil
	}

	return seq, nil
}

// selectUnits resolves which units this run covers: every discovered unit
// for a sweep, or exactly the targeted one.
func (r *Runner) selectUnits(opts Options) ([]migration.Unit, error) {
	units, err := r.loader.Discover()
	if err != nil {
		return nil, err
	}

	if opts.Migration == "" {
		return units, nil
	}

	for _, u := range units {
		if u.Name == opts.Migration {
			return []migration.Unit{u}, nil
		}
	}

	return nil, &MigrationError{Unit: opts.Migration, Err: migration.ErrUnitNotFound}
}

// runUnit takes one unit through the state machine. The returned Result
// always carries the final state; a non-nil error aborts the whole run.
func (r *Runner) runUnit(
	ctx context.Context,
	u migration.Unit,
	opts Options,
	watermark migration.Sequence,
) (Result, error) {
	res := Result{Unit: u, State: StatePending}

	// Sweep runs skip anything at or below the watermark. A targeted run
	// never consults it.
	if opts.Migration == "" && !opts.Force && watermark != "" && u.Seq.Compare(watermark) <= 0 {
		res.State = StateSkipped
		r.emit(Event{Kind: EventSkipped, Unit: u.Name})

		return res, nil
	}

	r.emit(Event{Kind: EventAttempting, Unit: u.Name, Detail: opts.Direction.String()})

	applied, err := r.ledger.IsApplied(ctx, u.Name)
	if err != nil {
		return r.fail(&res, err)
	}

	res.State = StateChecked

	if opts.Direction == DirectionUp && applied {
		if !opts.Force || (opts.Fake && !r.forceUnderFake) {
			res.State = StateSkipped
			r.emit(Event{Kind: EventAlreadyApplied, Unit: u.Name})

			return res, nil
		}

		r.emit(Event{Kind: EventForcedRerun, Unit: u.Name})
	}

	fn, err := r.loadDirection(u.Name, opts.Direction)
	if err != nil {
		return r.fail(&res, err)
	}

	collector := &migration.Collector{}
	fn(collector)

	stmts, autocommit, err := r.render(collector.Operations())
	if err != nil {
		return r.fail(&res, err)
	}

	res.State = StateApplying
	start := time.Now()

	if opts.Fake {
		for _, sql := range stmts {
			r.emit(Event{Kind: EventOperation, Unit: u.Name, Detail: sql})
		}
	} else {
		if err := r.execute(ctx, u.Name, stmts, autocommit, opts); err != nil {
			return r.fail(&res, err)
		}

		if err := r.record(ctx, u.Name, opts.Direction, applied); err != nil {
			return r.fail(&res, err)
		}
	}

	res.State = StateApplied
	r.emit(Event{Kind: EventApplied, Unit: u.Name, Duration: time.Since(start)})

	return res, nil
}

// fail marks the result failed and wraps the error with the unit name.
func (r *Runner) fail(res *Result, err error) (Result, error) {
	res.State = StateFailed
	res.Err = err

	return *res, &MigrationError{Unit: res.Unit.Name, Err: err}
}

// loadDirection loads the unit's handle and picks the requested direction.
func (r *Runner) loadDirection(name string, dir Direction) (migration.Func, error) {
	handle, err := r.loader.Load(name)
	if err != nil {
		return nil, err
	}

	fn := handle.Up
	if dir == DirectionDown {
		fn = handle.Down
	}

	if fn == nil {
		return nil, fmt.Errorf("%s: %w", dir, migration.ErrDirectionNotDefined)
	}

	return fn, nil
}

// render pre-renders every operation and reports whether any statement
// must run outside a transaction.
func (r *Runner) render(ops []migration.Operation) ([]string, bool, error) {
	stmts := make([]string, 0, len(ops))
	autocommit := false

	for _, op := range ops {
		sql, err := r.backend.Render(op)
		if err != nil {
			return nil, false, err
		}

		auto, err := r.backend.RequiresAutoCommit(sql)
		if err != nil {
			return nil, false, err
		}

		autocommit = autocommit || auto
		stmts = append(stmts, sql)
	}

	return stmts, autocommit, nil
}

// execute runs the rendered statements, inside one transaction unless the
// options or a non-transactional statement forbid it. Each statement is
// announced before it executes.
func (r *Runner) execute(ctx context.Context, unit string, stmts []string, autocommit bool, opts Options) error {
	run := func(s Session) error {
		for _, sql := range stmts {
			r.emit(Event{Kind: EventOperation, Unit: unit, Detail: sql})

			if err := s.Exec(ctx, sql); err != nil {
				return err
			}
		}

		return nil
	}

	if opts.Transaction && !autocommit {
		return r.backend.Transact(ctx, run)
	}

	return r.backend.AutoCommit(ctx, run)
}

// record updates the ledger after a successful execution. Re-applying a
// forced unit leaves its original record in place; reverting a unit that
// was never recorded is not an error.
func (r *Runner) record(ctx context.Context, name string, dir Direction, applied bool) error {
	switch {
	case dir == DirectionUp && !applied:
		return r.ledger.RecordApplied(ctx, name)
	case dir == DirectionDown && applied:
		return r.ledger.RecordReverted(ctx, name)
	}

	return nil
}

func (r *Runner) emit(e Event) {
	if r.sink != nil {
		r.sink(e)
	}
}
