package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/util"
	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload, train and predict in one non-interactive pass",
	Long: `Run the whole workflow without the workbench.

Settings come from flags, a YAML plan, or both (flags win).

Examples:
  modelcraft run --file iris.csv --target species --task classification
  modelcraft run --file houses.csv --target price --algorithm gradient_boosting --predict "3, 120, 1998"
  modelcraft run --plan plan.yaml

Plan format:
  dataset: iris.csv
  target: species
  task: classification
  algorithm: random_forest
  predictions:
    - "5.1, 3.5, 1.4, 0.2"`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runFlags struct {
	plan string
	RunPlan
}

func init() {
	runCmd.Flags().StringVar(&runFlags.plan, "plan", "", "YAML plan file")
	runCmd.Flags().StringVarP(&runFlags.Dataset, "file", "f", "", "Dataset file to upload")
	runCmd.Flags().StringVarP(&runFlags.Target, "target", "t", "", "Target column")
	runCmd.Flags().StringVar(&runFlags.Task, "task", "", "Task type: regression or classification")
	runCmd.Flags().StringVarP(&runFlags.Algorithm, "algorithm", "a", "", "Algorithm key (see 'modelcraft algorithms')")
	runCmd.Flags().StringArrayVarP(&runFlags.Predictions, "predict", "p", nil, "Comma separated feature values; repeatable")
}

func runRun(cmd *cobra.Command, args []string) error {
	plan := RunPlan{}
	if runFlags.plan != "" {
		loaded, err := LoadRunPlan(runFlags.plan)
		if err != nil {
			return err
		}
		plan = *loaded
	}
	plan.Merge(runFlags.RunPlan)
	if err := plan.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	return executePlan(ctx, app.Controller, plan, cmd.OutOrStdout())
}

// executePlan drives ctrl through plan, printing each accepted result to w.
func executePlan(ctx context.Context, ctrl *workflow.Controller, plan RunPlan, w io.Writer) error {
	file, err := workflow.ReadDataset(plan.Dataset)
	if err != nil {
		return err
	}
	if err := ctrl.SubmitDataset(ctx, file); err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	fmt.Fprintf(w, "Dataset %s: %d columns (%s)\n",
		snap.Session.DatasetName, len(snap.Session.DatasetColumns), util.JoinList(snap.Session.DatasetColumns))

	u := workflow.TrainingUpdate{}.Target(plan.Target)
	if plan.Task != "" {
		task, err := domain.ParseTaskType(plan.Task)
		if err != nil {
			return err
		}
		u = u.Task(task)
	}
	if plan.Algorithm != "" {
		u = u.Algo(plan.Algorithm)
	}
	if err := ctrl.ConfigureTraining(u); err != nil {
		return err
	}

	snap = ctrl.Snapshot()
	fmt.Fprintf(w, "Training %s on %q with %s\n",
		snap.Session.TaskType, snap.Session.TargetColumn, domain.AlgorithmLabel(snap.Session.Algorithm))

	if err := ctrl.RunTraining(ctx); err != nil {
		return err
	}
	snap = ctrl.Snapshot()
	if snap.Session.TrainingMetric != nil {
		fmt.Fprintln(w, snap.Session.TaskType.FormatMetric(*snap.Session.TrainingMetric))
	}
	fmt.Fprintf(w, "Features: %s\n", util.JoinList(snap.Session.TrainedFeatures))

	for _, input := range plan.Predictions {
		ctrl.SetPredictionInput(input)
		if err := ctrl.RunPrediction(ctx); err != nil {
			return err
		}
		snap = ctrl.Snapshot()
		if snap.Session.LastPrediction != nil {
			fmt.Fprintf(w, "Prediction [%s]: %s\n", input, *snap.Session.LastPrediction)
		}
	}
	return nil
}
