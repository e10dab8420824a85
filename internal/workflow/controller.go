package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// NoticeLevel grades a message surfaced to the user.
type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeInfo
	NoticeError
)

// Notice is the last message the controller surfaced.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Snapshot is an immutable view of the controller state for rendering.
type Snapshot struct {
	Session domain.Session
	Stage   domain.Stage
	Busy    bool
	Notice  Notice
}

// TrainingUpdate carries the fields a configure call changes. Nil fields are left alone.
type TrainingUpdate struct {
	TargetColumn *string
	TaskType     *domain.TaskType
	Algorithm    *string
}

// Target returns a copy of u that sets the target column. An empty name unsets it.
func (u TrainingUpdate) Target(column string) TrainingUpdate {
	u.TargetColumn = &column
	return u
}

// Task returns a copy of u that sets the task type.
func (u TrainingUpdate) Task(task domain.TaskType) TrainingUpdate {
	u.TaskType = &task
	return u
}

// Algo returns a copy of u that sets the algorithm.
func (u TrainingUpdate) Algo(key string) TrainingUpdate {
	u.Algorithm = &key
	return u
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for request tracing.
func WithLogger(l domain.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithJournal records accepted results in j.
func WithJournal(j ports.RunJournal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithMetrics reports action outcomes to m.
func WithMetrics(m ports.MetricsExporter) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one Session and drives it through the upload, configure,
// train and predict workflow. It is safe for concurrent use: at most one
// outbound request runs at a time, and configuration edits made while a
// request is in flight cause its response to be discarded.
type Controller struct {
	backend ports.ModelBackend
	journal ports.RunJournal
	metrics ports.MetricsExporter
	logger  domain.Logger
	now     func() time.Time

	guard    *semaphore.Weighted
	inflight atomic.Bool

	mu         sync.Mutex
	session    *domain.Session
	generation uint64
	notice     Notice
	trainingID string
}

// NewController creates a controller with an empty session.
func NewController(backend ports.ModelBackend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		logger:  nopLogger{},
		now:     time.Now,
		guard:   semaphore.NewWeighted(1),
		session: domain.NewSession(uuid.NewString()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	busy := c.inflight.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Session: c.session.Clone(),
		Stage:   c.session.Stage(),
		Busy:    busy,
		Notice:  c.notice,
	}
}

// Reset discards the session and starts a fresh one.
// Responses to requests issued before the reset are dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = domain.NewSession(uuid.NewString())
	c.generation++
	c.notice = Notice{}
	c.trainingID = ""
}

// SubmitDataset uploads a tabular file and records its columns.
func (c *Controller) SubmitDataset(ctx context.Context, file *ports.DatasetFile) (err error) {
	defer c.observe(ctx, ActionSubmitDataset, time.Now(), &err)

	if file == nil {
		return c.fail(ActionSubmitDataset, KindValidation, "Select a dataset file first", ErrNoFile)
	}
	if !c.begin() {
		return c.busy(ActionSubmitDataset)
	}
	defer c.end()

	sessionID := c.currentSessionID()
	c.logger.Debug(fmt.Sprintf("Uploading dataset %q (%d bytes)", file.Name, len(file.Content)))

	columns, err := c.backend.UploadDataset(ctx, *file)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Dataset upload failed: %v", err))
		var svcErr *ports.ServiceError
		if errors.As(err, &svcErr) && svcErr.Answered() {
			return c.fail(ActionSubmitDataset, KindLogical, serviceMessage(svcErr.Message, MsgUploadFailed), err)
		}
		return c.fail(ActionSubmitDataset, KindTransport, MsgUploadFailed, err)
	}

	c.mu.Lock()
	if c.session.ID != sessionID {
		c.mu.Unlock()
		return c.stale(ActionSubmitDataset)
	}
	s := c.session
	s.DatasetName = file.Name
	s.DatasetColumns = slices.Clone(columns)
	if s.TargetColumn != "" && !s.HasColumn(s.TargetColumn) {
		s.TargetColumn = ""
	}
	s.ClearTraining()
	c.generation++
	c.trainingID = ""
	c.notice = Notice{Level: NoticeInfo, Text: fmt.Sprintf("Loaded %d columns", len(columns))}
	c.mu.Unlock()

	c.logger.Debug(fmt.Sprintf("Dataset accepted with columns %v", columns))
	c.record(func() error {
		return c.journal.RecordDataset(ctx, ports.DatasetRecord{
			SessionID:   sessionID,
			DatasetName: file.Name,
			Columns:     slices.Clone(columns),
			UploadedAt:  c.now(),
		})
	})
	return nil
}

// ConfigureTraining merges u into the session. The call is atomic: if any
// field is invalid nothing changes. Effective changes to target, task or
// algorithm discard previous training results.
func (c *Controller) ConfigureTraining(u TrainingUpdate) (err error) {
	defer c.observe(context.Background(), ActionConfigure, time.Now(), &err)

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	cur := s.Config()
	next := cur

	if u.TargetColumn != nil {
		if *u.TargetColumn != "" && !s.HasColumn(*u.TargetColumn) {
			return c.failLocked(ActionConfigure, KindValidation,
				fmt.Sprintf("Column %q is not in the dataset", *u.TargetColumn), ErrUnknownColumn)
		}
		next.TargetColumn = *u.TargetColumn
	}

	if u.TaskType != nil {
		if *u.TaskType != domain.Regression && *u.TaskType != domain.Classification {
			return c.failLocked(ActionConfigure, KindValidation, "Unknown task type", ErrUnknownTaskType)
		}
		next.TaskType = *u.TaskType
	}

	if u.Algorithm != nil {
		if !domain.IsAllowed(next.TaskType, *u.Algorithm) {
			return c.failLocked(ActionConfigure, KindValidation,
				fmt.Sprintf("Algorithm %q is not available for %s", *u.Algorithm, next.TaskType), ErrUnknownAlgorithm)
		}
		next.Algorithm = *u.Algorithm
	} else if !domain.IsAllowed(next.TaskType, next.Algorithm) {
		next.Algorithm = domain.DefaultAlgorithm(next.TaskType)
	}

	if next == cur {
		return nil
	}

	s.TargetColumn = next.TargetColumn
	s.TaskType = next.TaskType
	s.Algorithm = next.Algorithm
	if s.TrainingMetric != nil || s.TrainedFeatures != nil {
		c.logger.Debug("Training configuration changed; discarding trained model")
	}
	s.ClearTraining()
	c.generation++
	c.trainingID = ""
	return nil
}

// SetPredictionInput stores the raw comma separated feature text.
func (c *Controller) SetPredictionInput(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.PredictionInput = input
}

// RunTraining asks the training service to fit a model for the current configuration.
func (c *Controller) RunTraining(ctx context.Context) (err error) {
	defer c.observe(ctx, ActionTrain, time.Now(), &err)

	if !c.begin() {
		return c.busy(ActionTrain)
	}
	defer c.end()

	c.mu.Lock()
	cfg := c.session.Config()
	sessionID := c.session.ID
	datasetName := c.session.DatasetName
	gen := c.generation
	switch {
	case strings.TrimSpace(cfg.TargetColumn) == "":
		defer c.mu.Unlock()
		return c.failLocked(ActionTrain, KindValidation, "Select a target column first", ErrTargetUnset)
	case cfg.Algorithm == "":
		defer c.mu.Unlock()
		return c.failLocked(ActionTrain, KindValidation, "Select an algorithm first", ErrAlgorithmUnset)
	}
	c.mu.Unlock()

	c.logger.Debug(fmt.Sprintf("Training %s on target %q with %s", cfg.TaskType, cfg.TargetColumn, cfg.Algorithm))

	resp, err := c.backend.Train(ctx, ports.TrainingRequest{
		TargetColumn: cfg.TargetColumn,
		Algorithm:    cfg.Algorithm,
		Task:         cfg.TaskType.String(),
	})
	if err != nil {
		c.logger.Error(fmt.Sprintf("Training request failed: %v", err))
		return c.fail(ActionTrain, KindTransport, MsgTrainingFailed, err)
	}
	if resp.Failed || resp.Error != "" {
		msg := serviceMessage(resp.Error, MsgTrainingFailed)
		c.logger.Error(fmt.Sprintf("Training service error: %s", msg))
		return c.fail(ActionTrain, KindLogical, msg, errors.New(msg))
	}
	score, ok := ResolveMetric(resp)
	if !ok {
		return c.fail(ActionTrain, KindLogical, MsgNoMetric, errors.New("no numeric metric in training response"))
	}

	c.mu.Lock()
	if c.session.ID != sessionID || c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("Discarding training result for superseded configuration")
		return c.stale(ActionTrain)
	}
	s := c.session
	s.ClearTraining()
	s.TrainingMetric = &score
	if resp.Features != nil {
		s.TrainedFeatures = slices.Clone(resp.Features)
	}
	c.generation++
	trainingID := uuid.NewString()
	c.trainingID = trainingID
	if resp.Message != "" {
		c.notice = Notice{Level: NoticeInfo, Text: resp.Message}
	} else {
		c.notice = Notice{Level: NoticeInfo, Text: cfg.TaskType.FormatMetric(score)}
	}
	features := slices.Clone(s.TrainedFeatures)
	c.mu.Unlock()

	c.logger.Debug(fmt.Sprintf("Training accepted: %s=%v features=%v", cfg.TaskType.MetricName(), score, features))
	if c.metrics != nil {
		c.metrics.RecordTrainingScore(ctx, cfg.TaskType.String(), cfg.Algorithm, score)
	}
	metricName := resp.MetricName
	if metricName == "" {
		metricName = cfg.TaskType.MetricName()
	}
	c.record(func() error {
		return c.journal.RecordTraining(ctx, ports.TrainingRecord{
			ID:           trainingID,
			SessionID:    sessionID,
			DatasetName:  datasetName,
			TargetColumn: cfg.TargetColumn,
			Task:         cfg.TaskType.String(),
			Algorithm:    cfg.Algorithm,
			Metric:       score,
			MetricName:   metricName,
			Features:     features,
			Message:      resp.Message,
			TrainedAt:    c.now(),
		})
	})
	return nil
}

// RunPrediction parses the prediction input and asks the service to score it.
func (c *Controller) RunPrediction(ctx context.Context) (err error) {
	defer c.observe(ctx, ActionPredict, time.Now(), &err)

	if !c.begin() {
		return c.busy(ActionPredict)
	}
	defer c.end()

	c.mu.Lock()
	if c.session.Stage() != domain.StageTrained {
		defer c.mu.Unlock()
		return c.failLocked(ActionPredict, KindValidation, "Train a model first", ErrNotTrained)
	}
	input := c.session.PredictionInput
	sessionID := c.session.ID
	trainingID := c.trainingID
	gen := c.generation
	c.mu.Unlock()

	values := domain.ParseFeatureValues(input)
	c.logger.Debug(fmt.Sprintf("Predicting for %d values", len(values)))

	resp, err := c.backend.Predict(ctx, values)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Prediction request failed: %v", err))
		return c.fail(ActionPredict, KindTransport, MsgPredictionFailed, err)
	}
	if resp.Failed || resp.Error != "" {
		msg := serviceMessage(resp.Error, MsgPredictionFailed)
		c.logger.Error(fmt.Sprintf("Prediction service error: %s", msg))
		return c.fail(ActionPredict, KindLogical, msg, errors.New(msg))
	}
	if !resp.HasValue {
		return c.fail(ActionPredict, KindLogical, MsgPredictionFailed, errors.New("prediction response has no value"))
	}
	prediction := domain.FormatPrediction(resp.Prediction)

	c.mu.Lock()
	if c.session.ID != sessionID || c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("Discarding prediction for superseded model")
		return c.stale(ActionPredict)
	}
	c.session.LastPrediction = &prediction
	c.notice = Notice{}
	c.mu.Unlock()

	c.record(func() error {
		return c.journal.RecordPrediction(ctx, ports.PredictionRecord{
			SessionID:   sessionID,
			TrainingID:  trainingID,
			Input:       input,
			Values:      values,
			Prediction:  prediction,
			PredictedAt: c.now(),
		})
	})
	return nil
}

// begin claims the single outbound request slot without blocking.
func (c *Controller) begin() bool {
	if !c.guard.TryAcquire(1) {
		return false
	}
	c.inflight.Store(true)
	return true
}

func (c *Controller) end() {
	c.inflight.Store(false)
	c.guard.Release(1)
}

func (c *Controller) currentSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

func (c *Controller) fail(action Action, kind ErrorKind, msg string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failLocked(action, kind, msg, err)
}

// failLocked must be called with c.mu held.
func (c *Controller) failLocked(action Action, kind ErrorKind, msg string, err error) error {
	c.notice = Notice{Level: NoticeError, Text: msg}
	return &ActionError{Action: action, Kind: kind, Message: msg, Err: err}
}

// busy does not touch the notice so the in-flight action's outcome is not hidden.
func (c *Controller) busy(action Action) error {
	return &ActionError{Action: action, Kind: KindBusy, Message: MsgBusy, Err: ErrBusy}
}

func (c *Controller) stale(action Action) error {
	return &ActionError{Action: action, Kind: KindStale, Message: MsgStale, Err: ErrStaleResponse}
}

func (c *Controller) record(write func() error) {
	if c.journal == nil {
		return
	}
	if err := write(); err != nil {
		c.logger.Error(fmt.Sprintf("Failed to write run journal: %v", err))
	}
}

func (c *Controller) observe(ctx context.Context, action Action, start time.Time, errp *error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if kind, ok := KindOf(*errp); ok {
		outcome = kind.String()
	}
	c.metrics.RecordAction(ctx, ports.ActionMetrics{
		Action:   string(action),
		Outcome:  outcome,
		Duration: time.Since(start),
	})
}

func serviceMessage(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Error(string) {}
