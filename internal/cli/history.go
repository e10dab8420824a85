package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
	"github.com/emiliopalmerini/modelcraft/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded training runs",
	Long: `Show training runs recorded in the run journal, newest first.

Examples:
  modelcraft history
  modelcraft history --limit 5
  modelcraft history --format json --output runs.json
  modelcraft history --format csv`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyFlags struct {
	format string
	output string
	limit  int
}

func init() {
	historyCmd.Flags().StringVarP(&historyFlags.format, "format", "f", "table", "Output format: table, json, csv")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "Output file (default: stdout)")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
}

// ExportRun is the serialized form of a training run.
type ExportRun struct {
	ID           string   `json:"id"`
	SessionID    string   `json:"session_id"`
	Dataset      string   `json:"dataset"`
	TargetColumn string   `json:"target_column"`
	Task         string   `json:"task"`
	Algorithm    string   `json:"algorithm"`
	MetricName   string   `json:"metric_name"`
	Metric       float64  `json:"metric"`
	Features     []string `json:"features"`
	Message      string   `json:"message,omitempty"`
	TrainedAt    string   `json:"trained_at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	runs, err := journal.ListTrainingRuns(ctx, historyFlags.limit)
	if err != nil {
		return err
	}

	var output io.Writer = cmd.OutOrStdout()
	if historyFlags.output != "" {
		f, err := os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		output = f
	}

	if err := writeHistory(output, runs, historyFlags.format); err != nil {
		return err
	}

	if historyFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d runs to %s\n", len(runs), historyFlags.output)
	}
	return nil
}

func toExportRun(r ports.TrainingRecord) ExportRun {
	features := r.Features
	if features == nil {
		features = []string{}
	}
	return ExportRun{
		ID:           r.ID,
		SessionID:    r.SessionID,
		Dataset:      r.DatasetName,
		TargetColumn: r.TargetColumn,
		Task:         r.Task,
		Algorithm:    r.Algorithm,
		MetricName:   r.MetricName,
		Metric:       r.Metric,
		Features:     features,
		Message:      r.Message,
		TrainedAt:    r.TrainedAt.UTC().Format(time.RFC3339),
	}
}

// writeHistory renders runs in the requested format.
func writeHistory(w io.Writer, runs []ports.TrainingRecord, format string) error {
	exportData := make([]ExportRun, len(runs))
	for i, r := range runs {
		exportData[i] = toExportRun(r)
	}

	switch format {
	case "table":
		if len(exportData) == 0 {
			fmt.Fprintln(w, "No training runs recorded yet")
			return nil
		}
		fmt.Fprintln(w, historyTable(exportData))
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(exportData); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case "csv":
		writer := csv.NewWriter(w)
		header := []string{
			"id", "session_id", "dataset", "target_column", "task", "algorithm",
			"metric_name", "metric", "features", "message", "trained_at",
		}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, r := range exportData {
			row := []string{
				r.ID, r.SessionID, r.Dataset, r.TargetColumn, r.Task, r.Algorithm,
				r.MetricName, strconv.FormatFloat(r.Metric, 'f', -1, 64),
				strings.Join(r.Features, ";"), r.Message, r.TrainedAt,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("failed to flush CSV: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use table, json or csv)", format)
	}
	return nil
}

func historyTable(runs []ExportRun) string {
	styles := theme.Default()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.DarkGray)).
		Headers("TRAINED", "DATASET", "TARGET", "ALGORITHM", "SCORE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range runs {
		score := strconv.FormatFloat(r.Metric, 'f', 4, 64)
		if task, err := domain.ParseTaskType(r.Task); err == nil {
			score = task.FormatMetric(r.Metric)
		}
		t.Row(
			util.FormatDateTime(r.TrainedAt),
			util.Truncate(r.Dataset, 24),
			r.TargetColumn,
			domain.AlgorithmLabel(r.Algorithm),
			score,
		)
	}
	return t.Render()
}
