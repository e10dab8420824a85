package ports

import (
	"context"
	"fmt"
)

// DatasetFile is a raw tabular file submitted for schema discovery.
type DatasetFile struct {
	Name    string // optional
	Content []byte
}

// TrainingRequest asks the training service to fit a model.
type TrainingRequest struct {
	TargetColumn string
	Algorithm    string
	Task         string // "regression" or "classification"
}

// TrainingResponse is the decoded training service reply.
// Score fields hold whatever JSON value the service sent (nil when absent)
// so callers can apply their own type and precedence rules.
type TrainingResponse struct {
	Metric     any
	Accuracy   any
	R2         any
	MetricName string
	Features   []string // nil when the service sent no feature list
	Message    string
	Failed     bool   // the service flagged the call as failed
	Error      string // service message for a failure, may be empty
}

// PredictionResponse is the decoded prediction service reply.
type PredictionResponse struct {
	Prediction any
	HasValue   bool
	Failed     bool
	Error      string
}

// ModelBackend is the remote service that parses datasets, trains models and predicts.
type ModelBackend interface {
	// UploadDataset sends a file and returns its ordered column names.
	UploadDataset(ctx context.Context, file DatasetFile) ([]string, error)
	// Train fits a model for the given configuration.
	Train(ctx context.Context, req TrainingRequest) (*TrainingResponse, error)
	// Predict scores one feature vector. Values may contain NaN.
	Predict(ctx context.Context, values []float64) (*PredictionResponse, error)
	// Ping checks the service is reachable.
	Ping(ctx context.Context) error
}

// ServiceError is returned when the service answered with a non-success status.
type ServiceError struct {
	StatusCode int
	Message    string // service-provided detail, empty when none
}

// Answered reports whether the service itself reported the failure, either with
// a message or inside a success response.
func (e *ServiceError) Answered() bool {
	return e.Message != "" || (e.StatusCode >= 200 && e.StatusCode < 300)
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.StatusCode)
}
