package cli

import (
	"github.com/spf13/cobra"

	"github.com/sediment-db/sediment/internal/runner"
)

var downCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "down",
	Short: "Revert an applied migration",
	Long: `Run the down direction of a migration unit and remove its ledger
record. The unit must be named explicitly with --migration; there is no
sweep in the down direction.`,
	RunE: runDown,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	downCmd.Flags().String("migration", "", "migration unit to revert (required)")
	downCmd.Flags().Bool("fake", false, "print operations without executing or recording them")
	downCmd.Flags().Bool("no-transaction", false, "run operations outside a transaction")
	downCmd.Flags().Duration("lock-timeout", 0, "override lock timeout (e.g., 10s, 1m)")
	downCmd.Flags().Duration("statement-timeout", 0, "override statement timeout (e.g., 30s, 5m)")
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, _ []string) error {
	opts := runner.DefaultOptions()
	opts.Direction = runner.DirectionDown
	opts.Migration, _ = cmd.Flags().GetString("migration")
	opts.Fake, _ = cmd.Flags().GetBool("fake")

	if noTx, _ := cmd.Flags().GetBool("no-transaction"); noTx {
		opts.Transaction = false
	}

	if opts.Migration == "" {
		return runner.ErrDownRequiresTarget
	}

	return runMigrations(cmd, opts)
}
