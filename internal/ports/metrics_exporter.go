package ports

import (
	"context"
	"time"
)

// MetricsExporter exports workflow action metrics to an external observability system.
type MetricsExporter interface {
	// RecordAction records the outcome and latency of one workflow action.
	RecordAction(ctx context.Context, m ActionMetrics)
	// RecordTrainingScore records the score of an accepted training run.
	RecordTrainingScore(ctx context.Context, task, algorithm string, score float64)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// ActionMetrics describes one completed workflow action.
type ActionMetrics struct {
	Action   string
	Outcome  string
	Duration time.Duration
}
