package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "modelcraft"

// GetXDGDataDir returns the XDG data directory for modelcraft.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/modelcraft
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appDir), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", appDir), nil
}

// EnsureXDGDataDir returns the data directory, creating it when missing.
func EnsureXDGDataDir() (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// DataFile returns the path of name inside the data directory, creating the directory.
func DataFile(name string) (string, error) {
	dir, err := EnsureXDGDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
