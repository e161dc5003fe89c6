package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sediment-db/sediment/internal/config"
	"github.com/sediment-db/sediment/internal/dialect"
	"github.com/sediment-db/sediment/internal/runner"
	"github.com/sediment-db/sediment/migration"
)

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New( //nolint:gochecknoglobals // sentinel error
	"database URL is required (set --database-url, SEDIMENT_DATABASE_URL, or database_url in config)",
)

var upCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Run pending migration units in sequence order and record each one in
the ledger. A single unit can be targeted with --migration; --fake previews
the SQL without executing or recording anything.`,
	RunE: runUp,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	upCmd.Flags().String("migration", "", "run a single migration unit by name")
	upCmd.Flags().Bool("fake", false, "print operations without executing or recording them")
	upCmd.Flags().Bool("force", false, "re-run migrations even if already applied")
	upCmd.Flags().Bool("no-transaction", false, "run operations outside a transaction")
	upCmd.Flags().Duration("lock-timeout", 0, "override lock timeout (e.g., 10s, 1m)")
	upCmd.Flags().Duration("statement-timeout", 0, "override statement timeout (e.g., 30s, 5m)")
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	opts := runner.DefaultOptions()
	opts.Migration, _ = cmd.Flags().GetString("migration")
	opts.Fake, _ = cmd.Flags().GetBool("fake")
	opts.Force, _ = cmd.Flags().GetBool("force")

	if noTx, _ := cmd.Flags().GetBool("no-transaction"); noTx {
		opts.Transaction = false
	}

	return runMigrations(cmd, opts)
}

// runMigrations opens the configured dialect target and drives a runner
// with colored narration. Shared by up and down.
func runMigrations(cmd *cobra.Command, opts runner.Options) error {
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

	render := newRenderer(out, opts.Force)
	run := runner.New(newLoader(cfg), target.Backend, target.Ledger, runner.WithSink(render.sink))

	_, err = run.Run(ctx, opts)

	return err
}

// newLoader combines in-binary registered units with SQL files from the
// migrations directory. The directory source is included only when the
// directory exists, so registry-only projects work out of the box.
func newLoader(cfg *config.Config) migration.Loader {
	sources := []migration.Loader{migration.Default()}

	if _, err := os.Stat(cfg.MigrationsDir); err == nil {
		sources = append(sources, migration.NewDirLoader(cfg.MigrationsDir))
	}

	return migration.NewMultiLoader(sources...)
}

// openTarget connects to the configured database, honoring per-command
// timeout flag overrides.
func openTarget(ctx context.Context, cmd *cobra.Command, cfg *config.Config, out io.Writer) (*dialect.Target, error) {
	lockTimeout := cfg.LockTimeout
	if cmd.Flags().Changed("lock-timeout") {
		lockTimeout, _ = cmd.Flags().GetDuration("lock-timeout")
	}

	stmtTimeout := cfg.StatementTimeout
	if cmd.Flags().Changed("statement-timeout") {
		stmtTimeout, _ = cmd.Flags().GetDuration("statement-timeout")
	}

	fmt.Fprintf(out, "Connecting to %s\n", config.RedactURL(cfg.DatabaseURL))

	target, err := dialect.Open(ctx, cfg.Dialect, cfg.DatabaseURL, dialect.Options{
		LockTimeout:      lockTimeout,
		StatementTimeout: stmtTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return target, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
