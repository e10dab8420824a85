package ports

import (
	"context"
	"time"
)

// RunJournal records completed workflow actions for later review.
type RunJournal interface {
	RecordDataset(ctx context.Context, rec DatasetRecord) error
	RecordTraining(ctx context.Context, rec TrainingRecord) error
	RecordPrediction(ctx context.Context, rec PredictionRecord) error
	ListTrainingRuns(ctx context.Context, limit int) ([]TrainingRecord, error)
	Close() error
}

// DatasetRecord describes an accepted dataset upload.
type DatasetRecord struct {
	SessionID   string
	DatasetName string
	Columns     []string
	UploadedAt  time.Time
}

// TrainingRecord describes an accepted training run.
type TrainingRecord struct {
	ID           string
	SessionID    string
	DatasetName  string
	TargetColumn string
	Task         string
	Algorithm    string
	Metric       float64
	MetricName   string
	Features     []string
	Message      string
	TrainedAt    time.Time
}

// PredictionRecord describes an accepted prediction.
type PredictionRecord struct {
	SessionID   string
	TrainingID  string
	Input       string
	Values      []float64
	Prediction  string
	PredictedAt time.Time
}
