package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/emiliopalmerini/modelcraft/internal/adapters/backend"
	"github.com/emiliopalmerini/modelcraft/internal/adapters/logger"
	"github.com/emiliopalmerini/modelcraft/internal/adapters/otel"
	"github.com/emiliopalmerini/modelcraft/internal/adapters/turso"
	"github.com/emiliopalmerini/modelcraft/internal/domain"
	"github.com/emiliopalmerini/modelcraft/internal/infrastructure/config"
	"github.com/emiliopalmerini/modelcraft/internal/migrate"
	"github.com/emiliopalmerini/modelcraft/internal/ports"
	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config     *config.Config
	Logger     domain.Logger
	Backend    ports.ModelBackend
	Journal    ports.RunJournal
	Metrics    ports.MetricsExporter
	Controller *workflow.Controller

	closers []func(context.Context) error
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rootFlags.backendURL != "" {
		cfg.Backend.URL = rootFlags.backendURL
	}
	if rootFlags.noJournal {
		cfg.Journal.Enabled = false
	}
	return cfg, nil
}

// NewAppContext creates an AppContext with all dependencies initialized.
// Logging, the journal and the metrics exporter degrade to disabled when they
// cannot start.
func NewAppContext(ctx context.Context, stderr io.Writer) (*AppContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &AppContext{Config: cfg}

	fileLog, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Logging disabled: %v\n", err)
		a.Logger = logger.Nop{}
	} else {
		a.Logger = fileLog
		a.closers = append(a.closers, func(context.Context) error { return fileLog.Close() })
	}
	log := a.Logger

	client, err := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	a.Backend = client

	opts := []workflow.Option{workflow.WithLogger(log)}

	if cfg.Journal.Enabled {
		journal, err := openJournal(ctx, cfg)
		if err != nil {
			log.Error(fmt.Sprintf("Run journal disabled: %v", err))
		} else {
			a.Journal = journal
			a.closers = append(a.closers, func(context.Context) error { return journal.Close() })
			opts = append(opts, workflow.WithJournal(journal))
		}
	}

	a.Metrics = newMetrics(ctx, cfg, log)
	a.closers = append(a.closers, a.Metrics.Close)
	opts = append(opts, workflow.WithMetrics(a.Metrics))

	a.Controller = workflow.NewController(client, opts...)
	return a, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*logger.FileLogger, error) {
	path, err := cfg.Log.Path()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.Log.Level)
	var mirror io.Writer
	if rootFlags.verbose {
		level = slog.LevelDebug
		mirror = stderr
	}
	return logger.NewFileLogger(path, level, mirror)
}

func newMetrics(ctx context.Context, cfg *config.Config, log domain.Logger) ports.MetricsExporter {
	if !cfg.Otel.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, otel.Config{
		Enabled:  cfg.Otel.Enabled,
		Endpoint: cfg.Otel.Endpoint,
		Insecure: cfg.Otel.Insecure,
	})
	if err != nil {
		log.Error(fmt.Sprintf("Metrics export disabled: %v", err))
		return otel.NewNoOpExporter()
	}
	return exp
}

// openJournalDB connects to the configured journal database without migrating it.
func openJournalDB(cfg *config.Config) (*sql.DB, error) {
	url := cfg.Journal.URL
	if url == "" {
		path, err := config.JournalPath()
		if err != nil {
			return nil, err
		}
		url = turso.LocalURL(path)
	}

	db, err := turso.NewDB(turso.Options{URL: url, AuthToken: cfg.Journal.AuthToken, Ping: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}
	return db, nil
}

// openJournal connects to the journal and applies pending migrations.
func openJournal(ctx context.Context, cfg *config.Config) (*turso.Journal, error) {
	db, err := openJournalDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := migrate.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return turso.NewJournal(db), nil
}

// Close releases all resources held by the AppContext, newest first.
func (a *AppContext) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
