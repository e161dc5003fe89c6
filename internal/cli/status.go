package cli

import (
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sediment-db/sediment/internal/ledger"
	"github.com/sediment-db/sediment/migration"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display applied migrations from the ledger alongside locally
discovered units that have not run yet.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)

	target, err := openTarget(ctx, cmd, cfg, out)
	if err != nil {
		return err
	}
	defer target.Close()

	if err := target.Ledger.EnsureInitialized(ctx); err != nil {
		return err
	}

	records, err := target.Ledger.All(ctx)
	if err != nil {
		return err
	}

	units, err := newLoader(cfg).Discover()
	if err != nil {
		return err
	}

	renderStatus(out, records, units)

	return nil
}

// renderStatus prints one row per known unit: applied ones with their
// ledger timestamp, discovered-but-unapplied ones as pending. Ledger
// records with no matching local unit still show, flagged as missing.
func renderStatus(out io.Writer, records []ledger.Record, units []migration.Unit) {
	applied := make(map[string]ledger.Record, len(records))
	for _, rec := range records {
		applied[rec.Name] = rec
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Migration", "Status", "Applied On"})

	known := make(map[string]bool, len(units))

	for _, u := range units {
		known[u.Name] = true

		if rec, ok := applied[u.Name]; ok {
			table.Append([]string{u.Name, "applied", rec.AppliedOn.Format(time.RFC3339)})
		} else {
			table.Append([]string{u.Name, "pending", ""})
		}
	}

	for _, rec := range records {
		if !known[rec.Name] {
			table.Append([]string{rec.Name, "applied (unit missing)", rec.AppliedOn.Format(time.RFC3339)})
		}
	}

	table.Render()
}
