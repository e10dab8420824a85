package domain

import (
	"fmt"
	"strings"
)

// TaskType selects between regression and classification models.
type TaskType int

const (
	Regression TaskType = iota
	Classification
)

// String returns the wire name of the task type.
func (t TaskType) String() string {
	switch t {
	case Classification:
		return "classification"
	default:
		return "regression"
	}
}

// MetricName returns the name of the score the training service reports for this task.
func (t TaskType) MetricName() string {
	if t == Classification {
		return "accuracy"
	}
	return "r2"
}

// FormatMetric renders a training score the way users expect to read it:
// accuracy as a percentage, R² as a plain coefficient.
func (t TaskType) FormatMetric(score float64) string {
	if t == Classification {
		return fmt.Sprintf("Model Accuracy: %.2f%%", score*100)
	}
	return fmt.Sprintf("R² Score: %.4f", score)
}

// ParseTaskType accepts the wire names, case-insensitively.
func ParseTaskType(s string) (TaskType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regression":
		return Regression, nil
	case "classification":
		return Classification, nil
	default:
		return Regression, fmt.Errorf("unknown task type %q", s)
	}
}
