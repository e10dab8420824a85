package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/modelcraft/internal/util"
)

const (
	envPrefix      = "MODELCRAFT"
	journalFile    = "journal.db"
	logFile        = "modelcraft.log"
	defaultBackend = "http://127.0.0.1:8001"
)

// Backend holds the model service connection settings.
type Backend struct {
	URL     string        `envconfig:"BACKEND_URL" default:"http://127.0.0.1:8001"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"60s"`
}

// Journal holds run journal database settings.
// An empty URL selects the local file in the data directory.
type Journal struct {
	Enabled   bool   `envconfig:"JOURNAL_ENABLED" default:"true"`
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Otel holds metrics export settings.
type Otel struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4317"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

// Log holds logging settings.
type Log struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE"`
}

// Config is the full application configuration.
type Config struct {
	Backend Backend
	Journal Journal
	Otel    Otel
	Log     Log
}

// Load reads configuration from MODELCRAFT_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	for _, section := range []any{&cfg.Backend, &cfg.Journal, &cfg.Otel, &cfg.Log} {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaultBackend
	}
	return &cfg, nil
}

// JournalPath returns the local journal file used when no database URL is configured.
func JournalPath() (string, error) {
	return util.DataFile(journalFile)
}

// Path returns the configured log file, defaulting to the data directory.
func (l Log) Path() (string, error) {
	if l.File != "" {
		return l.File, nil
	}
	return util.DataFile(logFile)
}
