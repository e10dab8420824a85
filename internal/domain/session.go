package domain

import "slices"

// Stage describes which workflow actions are currently valid.
type Stage int

const (
	StageEmpty Stage = iota
	StageConfiguring
	StageTrained
)

func (s Stage) String() string {
	switch s {
	case StageConfiguring:
		return "configuring"
	case StageTrained:
		return "trained"
	default:
		return "empty"
	}
}

// Session is the in-memory state of one workflow instance.
type Session struct {
	ID              string
	DatasetName     string
	DatasetColumns  []string
	TargetColumn    string // empty means unset
	TaskType        TaskType
	Algorithm       string
	TrainedFeatures []string
	TrainingMetric  *float64
	PredictionInput string
	LastPrediction  *string
}

// NewSession returns an empty session with the default task and algorithm.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		TaskType:  Regression,
		Algorithm: DefaultAlgorithm(Regression),
	}
}

// Stage derives the workflow stage from the session contents.
func (s *Session) Stage() Stage {
	switch {
	case len(s.DatasetColumns) == 0:
		return StageEmpty
	case s.TrainingMetric != nil:
		return StageTrained
	default:
		return StageConfiguring
	}
}

// HasColumn reports whether name is one of the dataset columns.
func (s *Session) HasColumn(name string) bool {
	return slices.Contains(s.DatasetColumns, name)
}

// ClearTraining drops results that belong to a previous training configuration.
func (s *Session) ClearTraining() {
	s.TrainedFeatures = nil
	s.TrainingMetric = nil
}

// Config returns the training configuration the session currently holds.
func (s *Session) Config() TrainingConfig {
	return TrainingConfig{
		TargetColumn: s.TargetColumn,
		TaskType:     s.TaskType,
		Algorithm:    s.Algorithm,
	}
}

// Clone returns a deep copy safe to hand to renderers.
func (s *Session) Clone() Session {
	c := *s
	c.DatasetColumns = slices.Clone(s.DatasetColumns)
	c.TrainedFeatures = slices.Clone(s.TrainedFeatures)
	if s.TrainingMetric != nil {
		m := *s.TrainingMetric
		c.TrainingMetric = &m
	}
	if s.LastPrediction != nil {
		p := *s.LastPrediction
		c.LastPrediction = &p
	}
	return c
}

// TrainingConfig is the triple a trained model is tied to.
type TrainingConfig struct {
	TargetColumn string
	TaskType     TaskType
	Algorithm    string
}
