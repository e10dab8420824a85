package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/components"
	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
	"github.com/emiliopalmerini/modelcraft/internal/util"
	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

// Workflow is the controller surface the workbench drives.
type Workflow interface {
	Snapshot() workflow.Snapshot
	SubmitDataset(ctx context.Context, file *ports.DatasetFile) error
	ConfigureTraining(u workflow.TrainingUpdate) error
	SetPredictionInput(input string)
	RunTraining(ctx context.Context) error
	RunPrediction(ctx context.Context) error
	Reset()
}

// Panel identifies the focused panel
type Panel int

const (
	PanelDataset Panel = iota
	PanelTarget
	PanelTask
	PanelAlgorithm
	PanelPredict
	panelCount
)

var panelLabels = [panelCount]string{"Dataset", "Target", "Task", "Algorithm", "Predict"}

const (
	selectorTarget    = "target"
	selectorTask      = "task"
	selectorAlgorithm = "algorithm"
)

// actionDoneMsg reports the end of an asynchronous workflow action.
type actionDoneMsg struct {
	action workflow.Action
	err    error
}

// fileErrMsg reports a dataset file that could not be read.
type fileErrMsg struct {
	err error
}

// App is the interactive workbench
type App struct {
	wf      Workflow
	ctx     context.Context
	keys    KeyMap
	help    components.HelpBar
	styles  *theme.Styles
	focus   Panel
	pending int
	local   string

	path      textinput.Model
	target    components.Selector
	task      components.Selector
	algorithm components.Selector
	input     textinput.Model
	spinner   spinner.Model

	width  int
	height int
}

// NewApp creates the workbench over wf. ctx bounds every request it issues.
func NewApp(ctx context.Context, wf Workflow) *App {
	path := textinput.New()
	path.Placeholder = "path/to/dataset.csv"
	path.Prompt = "file> "
	path.CharLimit = 4096

	input := textinput.New()
	input.Placeholder = "5.1, 3.5, 1.4, 0.2"
	input.Prompt = "values> "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	keys := DefaultKeyMap()
	a := &App{
		wf:        wf,
		ctx:       ctx,
		keys:      keys,
		help:      components.NewHelpBar(keys.Next, keys.Submit, keys.Train, keys.Predict, keys.Reset, keys.Quit),
		styles:    theme.Default(),
		path:      path,
		target:    components.NewSelector(selectorTarget, "Target column", nil),
		task:      components.NewSelector(selectorTask, "Task", taskOptions()),
		algorithm: components.NewSelector(selectorAlgorithm, "Algorithm", nil),
		input:     input,
		spinner:   sp,
	}
	a.target.Placeholder = "upload a dataset first"
	a.sync()
	a.applyFocus()
	return a
}

func taskOptions() []components.Option {
	return []components.Option{
		{Label: "Regression", Value: domain.Regression.String()},
		{Label: "Classification", Value: domain.Classification.String()},
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Next):
			a.focus = (a.focus + 1) % panelCount
			a.applyFocus()
			return a, nil
		case key.Matches(msg, a.keys.Prev):
			a.focus = (a.focus + panelCount - 1) % panelCount
			a.applyFocus()
			return a, nil
		case key.Matches(msg, a.keys.Train):
			return a, a.start(a.trainCmd())
		case key.Matches(msg, a.keys.Predict):
			return a, a.start(a.predictCmd())
		case key.Matches(msg, a.keys.Reset):
			a.wf.Reset()
			a.local = ""
			a.input.SetValue("")
			a.sync()
			return a, nil
		case key.Matches(msg, a.keys.Submit) && a.focus == PanelDataset:
			return a, a.start(a.uploadCmd(a.path.Value()))
		case key.Matches(msg, a.keys.Submit) && a.focus == PanelPredict:
			return a, a.start(a.predictCmd())
		}
		return a, a.forward(msg)

	case components.SelectedMsg:
		a.configure(msg)
		return a, nil

	case fileErrMsg:
		a.pending--
		a.local = msg.err.Error()
		return a, nil

	case actionDoneMsg:
		a.pending--
		if kind, ok := workflow.KindOf(msg.err); ok && kind == workflow.KindBusy {
			a.local = msg.err.Error()
		}
		a.sync()
		return a, nil

	case spinner.TickMsg:
		if !a.working() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, a.forward(msg)
}

// forward routes a message to the focused component.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focus {
	case PanelDataset:
		a.path, cmd = a.path.Update(msg)
	case PanelTarget:
		a.target, cmd = a.target.Update(msg)
	case PanelTask:
		a.task, cmd = a.task.Update(msg)
	case PanelAlgorithm:
		a.algorithm, cmd = a.algorithm.Update(msg)
	case PanelPredict:
		before := a.input.Value()
		a.input, cmd = a.input.Update(msg)
		if a.input.Value() != before {
			a.wf.SetPredictionInput(a.input.Value())
		}
	}
	return cmd
}

func (a *App) configure(msg components.SelectedMsg) {
	var u workflow.TrainingUpdate
	switch msg.ID {
	case selectorTarget:
		u = u.Target(msg.Value)
	case selectorTask:
		task, err := domain.ParseTaskType(msg.Value)
		if err != nil {
			a.local = err.Error()
			return
		}
		u = u.Task(task)
	case selectorAlgorithm:
		u = u.Algo(msg.Value)
	default:
		return
	}
	a.local = ""
	_ = a.wf.ConfigureTraining(u)
	a.sync()
}

// start launches an action and keeps the spinner running until it reports back.
func (a *App) start(cmd tea.Cmd) tea.Cmd {
	a.local = ""
	a.pending++
	return tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) uploadCmd(path string) tea.Cmd {
	wf, ctx := a.wf, a.ctx
	path = strings.TrimSpace(path)
	return func() tea.Msg {
		if path == "" {
			return actionDoneMsg{action: workflow.ActionSubmitDataset, err: wf.SubmitDataset(ctx, nil)}
		}
		file, err := workflow.ReadDataset(path)
		if err != nil {
			return fileErrMsg{err: err}
		}
		return actionDoneMsg{action: workflow.ActionSubmitDataset, err: wf.SubmitDataset(ctx, file)}
	}
}

func (a *App) trainCmd() tea.Cmd {
	wf, ctx := a.wf, a.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: workflow.ActionTrain, err: wf.RunTraining(ctx)}
	}
}

func (a *App) predictCmd() tea.Cmd {
	wf, ctx := a.wf, a.ctx
	wf.SetPredictionInput(a.input.Value())
	return func() tea.Msg {
		return actionDoneMsg{action: workflow.ActionPredict, err: wf.RunPrediction(ctx)}
	}
}

func (a *App) working() bool {
	return a.pending > 0 || a.wf.Snapshot().Busy
}

// sync refreshes the selectors from the controller state.
func (a *App) sync() {
	snap := a.wf.Snapshot()
	s := snap.Session

	targets := make([]components.Option, len(s.DatasetColumns))
	for i, col := range s.DatasetColumns {
		targets[i] = components.Option{Label: col, Value: col}
	}
	a.target.SetOptions(targets, s.TargetColumn)
	a.task.SetOptions(taskOptions(), s.TaskType.String())

	algs := domain.Algorithms(s.TaskType)
	algOpts := make([]components.Option, len(algs))
	for i, alg := range algs {
		algOpts[i] = components.Option{Label: alg.Label, Value: alg.Key}
	}
	a.algorithm.SetOptions(algOpts, s.Algorithm)

	a.keys.Predict.SetEnabled(snap.Stage == domain.StageTrained)
	a.help.SetBindings(a.keys.Next, a.keys.Submit, a.keys.Train, a.keys.Predict, a.keys.Reset, a.keys.Quit)
}

func (a *App) applyFocus() {
	a.path.Blur()
	a.input.Blur()
	a.target.Blur()
	a.task.Blur()
	a.algorithm.Blur()

	switch a.focus {
	case PanelDataset:
		a.path.Focus()
	case PanelTarget:
		a.target.Focus()
	case PanelTask:
		a.task.Focus()
	case PanelAlgorithm:
		a.algorithm.Focus()
	case PanelPredict:
		a.input.Focus()
	}
}

// View implements tea.Model
func (a *App) View() string {
	snap := a.wf.Snapshot()

	sep := lipgloss.NewStyle().
		Foreground(theme.DarkGray).
		Render(strings.Repeat("─", 64))

	sections := []string{
		a.renderHeader(snap),
		a.renderNav(),
		sep,
		a.card(PanelDataset, a.renderDataset(snap)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			a.card(PanelTarget, a.target.View()),
			a.card(PanelTask, a.task.View()),
			a.card(PanelAlgorithm, a.algorithm.View()),
		),
		a.renderTraining(snap),
		a.card(PanelPredict, a.renderPrediction(snap)),
		a.renderStatus(snap),
		a.styles.Help.Render(a.help.View()),
	}

	return a.styles.Container.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (a *App) renderHeader(snap workflow.Snapshot) string {
	title := a.styles.Title.Render("MODELCRAFT")
	tagline := a.styles.Muted.Render("Tabular model workbench")
	stage := components.NewStepper([]string{"dataset", "configure", "trained"}, int(snap.Stage)).View()
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tagline, "    ", stage)
}

func (a *App) renderNav() string {
	items := make([]NavItem, panelCount)
	for i := range items {
		items[i] = NavItem{Label: panelLabels[i], Active: Panel(i) == a.focus}
	}
	return NewNavBar(items).View()
}

func (a *App) card(p Panel, content string) string {
	if p == a.focus {
		return a.styles.FocusCard.Render(content)
	}
	return a.styles.Card.Render(content)
}

func (a *App) renderDataset(snap workflow.Snapshot) string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Dataset"))
	b.WriteString("\n")
	b.WriteString(a.path.View())
	b.WriteString("\n")
	if snap.Session.DatasetName != "" {
		b.WriteString(a.styles.Body.Render(fmt.Sprintf("%s: %s",
			snap.Session.DatasetName, util.Truncate(util.JoinList(snap.Session.DatasetColumns), 80))))
	} else {
		b.WriteString(a.styles.Muted.Render("no dataset loaded"))
	}
	return b.String()
}

func (a *App) renderTraining(snap workflow.Snapshot) string {
	s := snap.Session
	if s.TrainingMetric == nil {
		return a.styles.Muted.Render("No trained model")
	}
	metric := a.styles.Bold.Render(s.TaskType.FormatMetric(*s.TrainingMetric))
	features := a.styles.Body.Render("Features: " + util.JoinList(s.TrainedFeatures))
	return lipgloss.JoinVertical(lipgloss.Left, metric, features)
}

func (a *App) renderPrediction(snap workflow.Snapshot) string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Prediction"))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	if snap.Session.LastPrediction != nil {
		b.WriteString("\n")
		b.WriteString(a.styles.Success.Render("Prediction: " + *snap.Session.LastPrediction))
	}
	return b.String()
}

func (a *App) renderStatus(snap workflow.Snapshot) string {
	switch {
	case a.working():
		return a.spinner.View() + " " + a.styles.Muted.Render("Working...")
	case a.local != "":
		return a.styles.Error.Render(a.local)
	case snap.Notice.Level == workflow.NoticeError:
		return a.styles.Error.Render(snap.Notice.Text)
	case snap.Notice.Level == workflow.NoticeInfo:
		return a.styles.Success.Render(snap.Notice.Text)
	}
	return ""
}
