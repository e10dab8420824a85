package otel

import (
	"context"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordAction(ctx context.Context, m ports.ActionMetrics) {}

func (e *NoOpExporter) RecordTrainingScore(ctx context.Context, task, algorithm string, score float64) {
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
