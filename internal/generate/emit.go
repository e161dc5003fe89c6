package generate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/sediment-db/sediment/migration"
	"github.com/sediment-db/sediment/schema"
)

// unitTemplate is the source emitted for a generated migration unit. The
// file registers itself with the default registry, so dropping it into a
// project's migrations package is all a user has to do.
const unitTemplate = `package migrations

import (
	"github.com/sediment-db/sediment/migration"
{{- if .NeedsSchema }}
	"github.com/sediment-db/sediment/schema"
{{- end }}
)

func up{{ .Suffix }}(c *migration.Collector) {
	c.Collect(
{{- range .Up }}
		{{ . }},
{{- end }}
	)
}

func down{{ .Suffix }}(c *migration.Collector) {
	c.Collect(
{{- range .Down }}
		{{ . }},
{{- end }}
	)
}

func init() {
	migration.Register("{{ .Name }}", up{{ .Suffix }}, down{{ .Suffix }})
}
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate)) //nolint:gochecknoglobals // parsed once

type unitData struct {
	Name        string
	Suffix      string
	NeedsSchema bool
	Up          []string
	Down        []string
}

// Emit renders the Go source of one migration unit named "<seq>_<name>"
// covering all of changes. The up direction applies them in order; the down
// direction undoes them in reverse.
func Emit(changes []schema.Change, seq migration.Sequence, name string) (string, error) {
	unitName := fmt.Sprintf("%s_%s", seq, name)
	if _, ok := migration.ParseName(unitName); !ok {
		return "", fmt.Errorf("%w: %q", migration.ErrInvalidName, unitName)
	}

	data := unitData{
		Name:        unitName,
		Suffix:      string(seq),
		NeedsSchema: len(changes) > 0,
	}

	for _, change := range changes {
		lines, err := applyLines(change)
		if err != nil {
			return "", err
		}

		data.Up = append(data.Up, lines...)
	}

	for i := len(changes) - 1; i >= 0; i-- {
		lines, err := revertLines(changes[i])
		if err != nil {
			return "", err
		}

		data.Down = append(data.Down, lines...)
	}

	var sb strings.Builder
	if err := unitTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering migration source: %w", err)
	}

	return sb.String(), nil
}

// applyLines renders the collector calls that apply change. Creating a
// table also creates its declared indexes, each as its own operation.
func applyLines(change schema.Change) ([]string, error) {
	switch change.Kind {
	case schema.ChangeCreateTable:
		lines := []string{"c.CreateTable(" + tableLit(change.Def) + ")"}
		for _, idx := range change.Def.Indexes {
			lines = append(lines, fmt.Sprintf("c.AddIndex(%q, %s)", change.Table, indexLit(idx)))
		}

		return lines, nil
	case schema.ChangeDropTable:
		return []string{fmt.Sprintf("c.DropTable(%q)", change.Table)}, nil
	case schema.ChangeAddColumn:
		return []string{fmt.Sprintf("c.AddColumn(%q, %s)", change.Table, columnLit(change.Column))}, nil
	case schema.ChangeDropColumn:
		return []string{fmt.Sprintf("c.DropColumn(%q, %q)", change.Table, change.Column.Name)}, nil
	}

	return nil, fmt.Errorf("%s: %w", change.Kind, ErrUnknownChange)
}

// revertLines renders the collector calls that undo change. Dropping a
// table drops its indexes with it, so no separate index ops are needed.
func revertLines(change schema.Change) ([]string, error) {
	switch change.Kind {
	case schema.ChangeCreateTable:
		return []string{fmt.Sprintf("c.DropTable(%q)", change.Table)}, nil
	case schema.ChangeDropTable:
		lines := []string{"c.CreateTable(" + tableLit(change.Def) + ")"}
		for _, idx := range change.Def.Indexes {
			lines = append(lines, fmt.Sprintf("c.AddIndex(%q, %s)", change.Table, indexLit(idx)))
		}

		return lines, nil
	case schema.ChangeAddColumn:
		return []string{fmt.Sprintf("c.DropColumn(%q, %q)", change.Table, change.Column.Name)}, nil
	case schema.ChangeDropColumn:
		return []string{fmt.Sprintf("c.AddColumn(%q, %s)", change.Table, columnLit(change.Column))}, nil
	}

	return nil, fmt.Errorf("%s: %w", change.Kind, ErrUnknownChange)
}

// columnLit renders a schema.Column literal with only its non-zero fields,
// the way a hand-written migration would.
func columnLit(col schema.Column) string {
	fields := []string{
		fmt.Sprintf("Name: %q", col.Name),
		fmt.Sprintf("Type: %q", col.Type),
	}

	if col.Nullable {
		fields = append(fields, "Nullable: true")
	}

	if col.Default != "" {
		fields = append(fields, fmt.Sprintf("Default: %q", col.Default))
	}

	if col.PrimaryKey {
		fields = append(fields, "PrimaryKey: true")
	}

	return "schema.Column{" + strings.Join(fields, ", ") + "}"
}

func indexLit(idx schema.Index) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		cols = append(cols, fmt.Sprintf("%q", col))
	}

	fields := []string{
		fmt.Sprintf("Name: %q", idx.Name),
		fmt.Sprintf("Columns: []string{%s}", strings.Join(cols, ", ")),
	}

	if idx.Unique {
		fields = append(fields, "Unique: true")
	}

	return "schema.Index{" + strings.Join(fields, ", ") + "}"
}

// tableLit renders a schema.Table literal indented for use inside a Collect
// call. Indexes are emitted as separate AddIndex operations by the caller
// and left out of the literal.
func tableLit(def schema.Table) string {
	var sb strings.Builder

	sb.WriteString("schema.Table{\n")
	fmt.Fprintf(&sb, "\t\t\tName: %q,\n", def.Name)

	if len(def.Columns) > 0 {
		sb.WriteString("\t\t\tColumns: []schema.Column{\n")

		for _, col := range def.Columns {
			sb.WriteString("\t\t\t\t" + strings.TrimPrefix(columnLit(col), "schema.Column") + ",\n")
		}

		sb.WriteString("\t\t\t},\n")
	}

	sb.WriteString("\t\t}")

	return sb.String()
}
