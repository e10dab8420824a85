package workflow

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// MockBackend is a mock implementation of ports.ModelBackend for testing.
type MockBackend struct {
	UploadDatasetFunc func(ctx context.Context, file ports.DatasetFile) ([]string, error)
	TrainFunc         func(ctx context.Context, req ports.TrainingRequest) (*ports.TrainingResponse, error)
	PredictFunc       func(ctx context.Context, values []float64) (*ports.PredictionResponse, error)

	mu       sync.Mutex
	Uploads  []ports.DatasetFile
	Trains   []ports.TrainingRequest
	Predicts [][]float64
}

func (m *MockBackend) UploadDataset(ctx context.Context, file ports.DatasetFile) ([]string, error) {
	m.mu.Lock()
	m.Uploads = append(m.Uploads, file)
	m.mu.Unlock()
	if m.UploadDatasetFunc != nil {
		return m.UploadDatasetFunc(ctx, file)
	}
	return []string{}, nil
}

func (m *MockBackend) Train(ctx context.Context, req ports.TrainingRequest) (*ports.TrainingResponse, error) {
	m.mu.Lock()
	m.Trains = append(m.Trains, req)
	m.mu.Unlock()
	if m.TrainFunc != nil {
		return m.TrainFunc(ctx, req)
	}
	return &ports.TrainingResponse{Metric: 1.0}, nil
}

func (m *MockBackend) Predict(ctx context.Context, values []float64) (*ports.PredictionResponse, error) {
	m.mu.Lock()
	m.Predicts = append(m.Predicts, values)
	m.mu.Unlock()
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, values)
	}
	return &ports.PredictionResponse{Prediction: "ok", HasValue: true}, nil
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return nil
}

func (m *MockBackend) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Uploads) + len(m.Trains) + len(m.Predicts)
}

// MockJournal captures journal writes.
type MockJournal struct {
	mu          sync.Mutex
	Datasets    []ports.DatasetRecord
	Trainings   []ports.TrainingRecord
	Predictions []ports.PredictionRecord
	Err         error
}

func (j *MockJournal) RecordDataset(ctx context.Context, rec ports.DatasetRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Datasets = append(j.Datasets, rec)
	return j.Err
}

func (j *MockJournal) RecordTraining(ctx context.Context, rec ports.TrainingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Trainings = append(j.Trainings, rec)
	return j.Err
}

func (j *MockJournal) RecordPrediction(ctx context.Context, rec ports.PredictionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Predictions = append(j.Predictions, rec)
	return j.Err
}

func (j *MockJournal) ListTrainingRuns(ctx context.Context, limit int) ([]ports.TrainingRecord, error) {
	return nil, nil
}

func (j *MockJournal) Close() error {
	return nil
}

// MockMetrics captures recorded actions.
type MockMetrics struct {
	mu      sync.Mutex
	Actions []ports.ActionMetrics
	Scores  []float64
}

func (m *MockMetrics) RecordAction(ctx context.Context, a ports.ActionMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, a)
}

func (m *MockMetrics) RecordTrainingScore(ctx context.Context, task, algorithm string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scores = append(m.Scores, score)
}

func (m *MockMetrics) Close(ctx context.Context) error {
	return nil
}
