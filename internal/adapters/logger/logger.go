package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emiliopalmerini/modelcraft/internal/domain"
)

// FileLogger writes structured log lines to a file and optionally mirrors them.
type FileLogger struct {
	log  *slog.Logger
	file *os.File
}

var _ domain.Logger = (*FileLogger)(nil)

// ParseLevel maps "debug" and "error" to slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFileLogger appends to path. When mirror is non-nil every line is also written there.
func NewFileLogger(path string, level slog.Level, mirror io.Writer) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var w io.Writer = f
	if mirror != nil {
		w = io.MultiWriter(f, mirror)
	}

	return &FileLogger{
		log:  newSlog(w, level),
		file: f,
	}, nil
}

// New builds a logger over an arbitrary writer.
func New(w io.Writer, level slog.Level) *FileLogger {
	return &FileLogger{log: newSlog(w, level)}
}

func newSlog(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("app", "modelcraft")
}

func (l *FileLogger) Debug(message string) {
	l.log.Debug(message)
}

func (l *FileLogger) Error(message string) {
	l.log.Error(message)
}

func (l *FileLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string) {}
func (Nop) Error(string) {}
