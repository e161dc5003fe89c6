package cli

import (
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sediment-db/sediment/internal/runner"
)

// renderer turns runner events into the colored narration users see:
// magenta for bookkeeping, cyan for attempts, green for executed work, red
// and yellow for rejections and overrides.
type renderer struct {
	out   io.Writer
	force bool

	magenta *color.Color
	cyan    *color.Color
	green   *color.Color
	yellow  *color.Color
	red     *color.Color
}

func newRenderer(out io.Writer, force bool) *renderer {
	return &renderer{
		out:     out,
		force:   force,
		magenta: color.New(color.FgMagenta),
		cyan:    color.New(color.FgCyan),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
	}
}

func (r *renderer) sink(e runner.Event) {
	switch e.Kind {
	case runner.EventLastApplied:
		if e.Unit == "" {
			r.magenta.Fprintln(r.out, "No migrations have been run yet")
			return
		}

		r.magenta.Fprintf(r.out, "Last run migration %s\n", e.Unit)
	case runner.EventAttempting:
		r.cyan.Fprintf(r.out, "\nAttempting to run %s\n", e.Unit)
	case runner.EventAlreadyApplied:
		r.red.Fprintln(r.out, "This migration has already been run on this server")
	case runner.EventForcedRerun:
		r.yellow.Fprintln(r.out, "Force running this migration again")
	case runner.EventOperation:
		r.green.Fprintln(r.out, e.Detail)
	case runner.EventApplied:
		r.green.Fprintf(r.out, "Done (%s)\n", e.Duration.Truncate(time.Millisecond))
	case runner.EventFailed:
		r.red.Fprintln(r.out, "Failed")
	case runner.EventSummary:
		if e.Count > 0 || r.force {
			r.magenta.Fprintf(r.out, "\nNumber of migrations run %d\n", e.Count)
			return
		}

		r.magenta.Fprintln(r.out, "\nDatabase already upto date!")
	}
}
