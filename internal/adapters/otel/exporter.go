package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

const (
	serviceName    = "modelcraft"
	serviceVersion = "1.0.0"
)

// Exporter exports workflow metrics to an OTEL Collector.
type Exporter struct {
	provider *sdkmetric.MeterProvider
	instruments
}

var _ ports.MetricsExporter = (*Exporter)(nil)

type instruments struct {
	actionsTotal  metric.Int64Counter
	durationHist  metric.Float64Histogram
	trainingScore metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	inst, err := newInstruments(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}

	return &Exporter{provider: provider, instruments: inst}, nil
}

// newExporterWithReader builds an exporter on top of an arbitrary reader.
func newExporterWithReader(reader sdkmetric.Reader) (*Exporter, error) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	inst, err := newInstruments(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	return &Exporter{provider: provider, instruments: inst}, nil
}

func newInstruments(meter metric.Meter) (instruments, error) {
	actionsTotal, err := meter.Int64Counter(
		"modelcraft_actions_total",
		metric.WithDescription("Workflow actions by outcome"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating actions counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"modelcraft_action_duration_seconds",
		metric.WithDescription("Workflow action latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating duration histogram: %w", err)
	}

	trainingScore, err := meter.Float64Histogram(
		"modelcraft_training_score",
		metric.WithDescription("Score of accepted training runs (accuracy or R²)"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating training score histogram: %w", err)
	}

	return instruments{
		actionsTotal:  actionsTotal,
		durationHist:  durationHist,
		trainingScore: trainingScore,
	}, nil
}

// RecordAction records the outcome and latency of one workflow action.
func (e *Exporter) RecordAction(ctx context.Context, m ports.ActionMetrics) {
	e.actionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", m.Action),
		attribute.String("outcome", m.Outcome),
	))
	e.durationHist.Record(ctx, m.Duration.Seconds(), metric.WithAttributes(
		attribute.String("action", m.Action),
	))
}

// RecordTrainingScore records the score of an accepted training run.
func (e *Exporter) RecordTrainingScore(ctx context.Context, task, algorithm string, score float64) {
	e.trainingScore.Record(ctx, score, metric.WithAttributes(
		attribute.String("task", task),
		attribute.String("algorithm", algorithm),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
