// Package generate diffs a declared schema against the live database schema
// and emits migration unit source covering the gap.
package generate

import (
	"context"

	"go.uber.org/zap"

	"github.com/sediment-db/sediment/schema"
)

// Generator computes the structural changes needed to bring the live schema
// in line with the declared one.
//
// The diff is additive-biased: live-only tables are left alone, and renames
// and type changes are not recognized as such. A declared column whose
// definition cannot be resolved is reported and skipped rather than failing
// the whole run.
type Generator struct {
	provider     schema.Provider
	introspector schema.Introspector
	log          *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for diff diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a Generator comparing provider's declaration against the
// schema introspected by intro.
func New(provider schema.Provider, intro schema.Introspector, opts ...Option) *Generator {
	g := &Generator{
		provider:     provider,
		introspector: intro,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.log == nil {
		g.log = zap.L()
	}

	return g
}

// Diff returns the changes that would migrate the live schema to the
// declared one, ordered by table name. Tables with fewer than two columns
// are treated as incomplete definitions and ignored on both sides.
func (g *Generator) Diff(ctx context.Context) ([]schema.Change, error) {
	declared, err := g.provider.DeclaredSchema()
	if err != nil {
		return nil, err
	}

	live, err := g.introspector.LiveSchema(ctx)
	if err != nil {
		return nil, err
	}

	declared = g.usable(declared)
	live = g.usable(live)

	var changes []schema.Change

	for _, name := range declared.TableNames() {
		table := declared[name]

		liveTable, ok := live[name]
		if !ok {
			g.log.Info("New table", zap.String("table", name))
			changes = append(changes, schema.Change{
				Kind:  schema.ChangeCreateTable,
				Table: name,
				Def:   table,
			})

			continue
		}

		changes = append(changes, g.diffColumns(table, liveTable)...)
	}

	return changes, nil
}

// usable filters out tables with fewer than two columns.
func (g *Generator) usable(snap schema.Snapshot) schema.Snapshot {
	out := make(schema.Snapshot, len(snap))

	for name, table := range snap {
		if len(table.Columns) < 2 {
			g.log.Debug("Skipping incomplete table definition", zap.String("table", name))
			continue
		}

		out[name] = table
	}

	return out
}

// diffColumns compares two definitions of the same table. Columns are
// matched on their full definition, so a changed column shows up as an
// add/drop pair rather than an in-place alteration.
func (g *Generator) diffColumns(declared, live schema.Table) []schema.Change {
	declaredSet := columnSet(declared)
	liveSet := columnSet(live)

	var changes []schema.Change

	for _, col := range declared.Columns {
		if _, ok := liveSet[col]; ok {
			continue
		}

		if col.Type == "" {
			g.log.Warn("Could not resolve column definition",
				zap.String("table", declared.Name),
				zap.String("column", col.Name),
				zap.Error(ErrAmbiguousField))

			continue
		}

		g.log.Info("Column added",
			zap.String("table", declared.Name),
			zap.String("column", col.Name))

		changes = append(changes, schema.Change{
			Kind:   schema.ChangeAddColumn,
			Table:  declared.Name,
			Column: col,
		})
	}

	for _, col := range live.Columns {
		if _, ok := declaredSet[col]; ok {
			continue
		}

		g.log.Info("Column dropped",
			zap.String("table", live.Name),
			zap.String("column", col.Name))

		// Carry the live definition so the down direction can restore it.
		changes = append(changes, schema.Change{
			Kind:   schema.ChangeDropColumn,
			Table:  live.Name,
			Column: col,
		})
	}

	return changes
}

func columnSet(table schema.Table) map[schema.Column]struct{} {
	set := make(map[schema.Column]struct{}, len(table.Columns))
	for _, col := range table.Columns {
		set[col] = struct{}{}
	}

	return set
}
