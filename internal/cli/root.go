package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootFlags struct {
	verbose    bool
	backendURL string
	noJournal  bool
}

var rootCmd = &cobra.Command{
	Use:   "modelcraft",
	Short: "Upload tabular data, train models, and run predictions",
	Long: `modelcraft drives a remote model service through the full workflow:
upload a tabular dataset, pick a target column, task and algorithm,
train a model, and score new feature vectors.

Run without a subcommand to open the interactive workbench.`,
	SilenceUsage: true,
	RunE:         runWorkbench,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Mirror debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&rootFlags.backendURL, "backend", "", "Model service URL (overrides MODELCRAFT_BACKEND_URL)")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.noJournal, "no-journal", false, "Do not record results in the run journal")

	rootCmd.AddCommand(workbenchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
}
