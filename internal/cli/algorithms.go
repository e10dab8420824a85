package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the algorithms available per task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks := []domain.TaskType{domain.Regression, domain.Classification}
		if algorithmsTask != "" {
			task, err := domain.ParseTaskType(algorithmsTask)
			if err != nil {
				return err
			}
			tasks = []domain.TaskType{task}
		}
		writeAlgorithms(cmd.OutOrStdout(), tasks)
		return nil
	},
}

var algorithmsTask string

func init() {
	algorithmsCmd.Flags().StringVar(&algorithmsTask, "task", "", "Only list algorithms for this task")
}

func writeAlgorithms(w io.Writer, tasks []domain.TaskType) {
	for i, task := range tasks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", task)
		for j, alg := range domain.Algorithms(task) {
			marker := " "
			if j == 0 {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %-20s %s\n", marker, alg.Key, alg.Label)
		}
	}
}
