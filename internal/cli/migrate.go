package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run run-journal migrations",
	Long: `Run run-journal database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  modelcraft migrate      # Run all pending migrations
  modelcraft migrate 0    # Roll back all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openJournalDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migrate.New(ctx, db, migrate.WithOutput(out))
	if err != nil {
		return err
	}
	st, err := m.State(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d\n", st.Version)

	target := st.Latest
	if len(args) == 1 {
		target, err = strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
	}
	if target == st.Version && !st.Dirty {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}

	ran, err := m.To(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d steps)\n", target, ran)
	return nil
}
