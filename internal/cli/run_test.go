package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

func TestExecutePlan(t *testing.T) {
	srv := testModelService(t)
	ctrl := testController(t, srv)
	dataset := writeFile(t, t.TempDir(), "iris.csv", "sepal_length,sepal_width,species\n5.1,3.5,setosa\n")

	var out bytes.Buffer
	err := executePlan(context.Background(), ctrl, RunPlan{
		Dataset:     dataset,
		Target:      "species",
		Task:        "classification",
		Algorithm:   "knn",
		Predictions: []string{"5.1, 3.5"},
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Dataset iris.csv: 3 columns (sepal_length, sepal_width, species)")
	assert.Contains(t, text, `Training classification on "species" with K-Nearest Neighbors`)
	assert.Contains(t, text, "Model Accuracy: 95.33%")
	assert.Contains(t, text, "Features: sepal_length, sepal_width")
	assert.Contains(t, text, "Prediction [5.1, 3.5]: setosa")
}

func TestExecutePlan_Failures(t *testing.T) {
	srv := testModelService(t)
	dataset := writeFile(t, t.TempDir(), "iris.csv", "a\n1\n")

	tests := []struct {
		name string
		plan RunPlan
		kind workflow.ErrorKind
	}{
		{"unknown target", RunPlan{Dataset: dataset, Target: "price"}, workflow.KindValidation},
		{"algorithm not allowed for task", RunPlan{Dataset: dataset, Target: "species", Task: "regression", Algorithm: "naive_bayes"}, workflow.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := testController(t, srv)
			err := executePlan(context.Background(), ctrl, tt.plan, &bytes.Buffer{})
			require.Error(t, err)
			kind, ok := workflow.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}

	t.Run("unknown task", func(t *testing.T) {
		ctrl := testController(t, srv)
		err := executePlan(context.Background(), ctrl, RunPlan{Dataset: dataset, Target: "species", Task: "clustering"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown task type")
	})

	t.Run("missing file", func(t *testing.T) {
		ctrl := testController(t, srv)
		err := executePlan(context.Background(), ctrl, RunPlan{Dataset: filepath.Join(t.TempDir(), "x.csv"), Target: "a"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "failed to read dataset")
	})
}

func TestRunAndHistoryCommands(t *testing.T) {
	srv := testModelService(t)
	isolateEnv(t, srv.URL)
	dataset := writeFile(t, t.TempDir(), "iris.csv", "sepal_length,sepal_width,species\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"run", "--file", dataset, "--target", "species", "--task", "classification"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Model Accuracy: 95.33%")

	out.Reset()
	rootCmd.SetArgs([]string{"history", "--format", "json"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"target_column": "species"`)
	assert.Contains(t, out.String(), `"algorithm": "random_forest"`)
	assert.Contains(t, out.String(), `"metric_name": "accuracy"`)
}
