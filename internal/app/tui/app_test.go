package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/components"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

type fakeBackend struct {
	columns    []string
	uploadErr  error
	trainResp  *ports.TrainingResponse
	prediction any
}

func (f *fakeBackend) UploadDataset(ctx context.Context, file ports.DatasetFile) ([]string, error) {
	return f.columns, f.uploadErr
}

func (f *fakeBackend) Train(ctx context.Context, req ports.TrainingRequest) (*ports.TrainingResponse, error) {
	return f.trainResp, nil
}

func (f *fakeBackend) Predict(ctx context.Context, values []float64) (*ports.PredictionResponse, error) {
	return &ports.PredictionResponse{Prediction: f.prediction, HasValue: true}, nil
}

func (f *fakeBackend) Ping(ctx context.Context) error { return nil }

func newTestApp(t *testing.T, backend *fakeBackend) (*App, *workflow.Controller) {
	t.Helper()
	ctrl := workflow.NewController(backend)
	app := NewApp(context.Background(), ctrl)
	// Blinking cursors schedule timed commands.
	app.path.Cursor.SetMode(cursor.CursorStatic)
	app.input.Cursor.SetMode(cursor.CursorStatic)
	return app, ctrl
}

// drive feeds a command's messages back into the app, skipping spinner ticks.
func drive(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drive(a, c)
		}
		return
	}
	switch msg.(type) {
	case actionDoneMsg, fileErrMsg, components.SelectedMsg:
		_, next := a.Update(msg)
		drive(a, next)
	}
}

func press(a *App, k tea.KeyMsg) {
	_, cmd := a.Update(k)
	drive(a, cmd)
}

func typeText(a *App, s string) {
	for _, r := range s {
		press(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iris.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,species\n1,2,x\n"), 0o644))
	return path
}

func TestApp_FullWorkflow(t *testing.T) {
	metric := 0.9
	backend := &fakeBackend{
		columns:    []string{"a", "b", "species"},
		trainResp:  &ports.TrainingResponse{Accuracy: metric, Features: []string{"a", "b"}},
		prediction: "setosa",
	}
	app, ctrl := newTestApp(t, backend)

	typeText(app, writeDataset(t))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})

	snap := ctrl.Snapshot()
	require.Equal(t, []string{"a", "b", "species"}, snap.Session.DatasetColumns)
	assert.Equal(t, "iris.csv", snap.Session.DatasetName)
	assert.Equal(t, 0, app.pending)

	// Target column: move to "species" and confirm.
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "species", ctrl.Snapshot().Session.TargetColumn)

	// Task: classification.
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	snap = ctrl.Snapshot()
	assert.Equal(t, domain.Classification, snap.Session.TaskType)
	assert.Equal(t, domain.DefaultAlgorithm(domain.Classification), snap.Session.Algorithm)
	assert.Len(t, app.algorithm.Options, len(domain.Algorithms(domain.Classification)))

	press(app, tea.KeyMsg{Type: tea.KeyCtrlT})
	snap = ctrl.Snapshot()
	require.NotNil(t, snap.Session.TrainingMetric)
	assert.Equal(t, domain.StageTrained, snap.Stage)
	assert.Contains(t, app.View(), "Model Accuracy: 90.00%")

	// Prediction panel.
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, PanelPredict, app.focus)
	typeText(app, "1, 2")
	assert.Equal(t, "1, 2", ctrl.Snapshot().Session.PredictionInput)

	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	snap = ctrl.Snapshot()
	require.NotNil(t, snap.Session.LastPrediction)
	assert.Equal(t, "setosa", *snap.Session.LastPrediction)
	assert.Contains(t, app.View(), "Prediction: setosa")
}

func TestApp_UploadFailureShowsNotice(t *testing.T) {
	app, _ := newTestApp(t, &fakeBackend{uploadErr: errors.New("connection refused")})

	typeText(app, writeDataset(t))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, app.View(), workflow.MsgUploadFailed)
}

func TestApp_MissingFileShowsLocalError(t *testing.T) {
	app, ctrl := newTestApp(t, &fakeBackend{})

	typeText(app, filepath.Join(t.TempDir(), "nope.csv"))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, app.local, "failed to read dataset")
	assert.Equal(t, domain.StageEmpty, ctrl.Snapshot().Stage)
	assert.Equal(t, 0, app.pending)
}

func TestApp_TrainWithoutTargetShowsValidation(t *testing.T) {
	app, _ := newTestApp(t, &fakeBackend{columns: []string{"a"}})

	typeText(app, writeDataset(t))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	press(app, tea.KeyMsg{Type: tea.KeyCtrlT})

	assert.Contains(t, app.View(), "Select a target column first")
}

func TestApp_ResetClearsSession(t *testing.T) {
	app, ctrl := newTestApp(t, &fakeBackend{columns: []string{"a", "b"}})

	typeText(app, writeDataset(t))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, app.target.Options, 2)

	press(app, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Empty(t, ctrl.Snapshot().Session.DatasetColumns)
	assert.Empty(t, app.target.Options)
}

func TestApp_FocusCycles(t *testing.T) {
	app, _ := newTestApp(t, &fakeBackend{})

	press(app, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, PanelPredict, app.focus)
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PanelDataset, app.focus)
}

func TestApp_Quit(t *testing.T) {
	app, _ := newTestApp(t, &fakeBackend{})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_ViewBeforeUpload(t *testing.T) {
	app, _ := newTestApp(t, &fakeBackend{})
	view := app.View()
	for _, want := range []string{"MODELCRAFT", "no dataset loaded", "upload a dataset first", "No trained model"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}
}
