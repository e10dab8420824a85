package turso

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// Options configures how the journal database is opened.
type Options struct {
	URL       string
	AuthToken string
	Ping      bool
}

// IsRemote reports whether databaseURL points at a Turso/libSQL server rather than a local file.
func IsRemote(databaseURL string) bool {
	for _, scheme := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return true
		}
	}
	return false
}

// LocalURL turns a filesystem path into a libsql file URL.
func LocalURL(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path
}

// NewDB opens the journal database and configures the connection pool.
func NewDB(opts Options) (*sql.DB, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	connStr := opts.URL
	remote := IsRemote(opts.URL)
	if remote && opts.AuthToken != "" {
		connStr = opts.URL + "?authToken=" + url.QueryEscape(opts.AuthToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if remote {
		// Turso closes idle Hrana streams aggressively.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(1)
	}

	if opts.Ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	return db, nil
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry executes fn, retrying up to maxRetries times on Turso stream errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
