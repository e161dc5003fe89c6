package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sediment-db/sediment/internal/generate"
	"github.com/sediment-db/sediment/schema"
)

// errNameRequired is returned when generate is invoked without a label.
var errNameRequired = errors.New("a unit label is required (set --name)")

var generateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "generate",
	Short: "Generate a migration from schema changes",
	Long: `Compare the declared schema file against the live database and emit
a migration unit covering the difference. The source prints to stdout
unless --write is given.`,
	RunE: runGenerate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	generateCmd.Flags().String("name", "", "label for the generated unit (required)")
	generateCmd.Flags().Bool("write", false, "write the unit into the migrations directory")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		return errNameRequired
	}

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

	gen := generate.New(schema.NewFileProvider(cfg.SchemaFile), target.Introspector)

	changes, err := gen.Diff(ctx)
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		fmt.Fprintln(out, "No schema changes detected.")
		return nil
	}

	seq, err := generate.NextSequence(cfg.MigrationsDir)
	if err != nil {
		return err
	}

	source, err := generate.Emit(changes, seq, name)
	if err != nil {
		return err
	}

	if write, _ := cmd.Flags().GetBool("write"); !write {
		fmt.Fprint(out, source)
		return nil
	}

	if err := os.MkdirAll(cfg.MigrationsDir, 0o755); err != nil {
		return fmt.Errorf("creating migrations directory: %w", err)
	}

	path := filepath.Join(cfg.MigrationsDir, fmt.Sprintf("%s_%s.go", seq, name))
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing migration file: %w", err)
	}

	fmt.Fprintf(out, "Wrote %s\n", path)

	return nil
}
