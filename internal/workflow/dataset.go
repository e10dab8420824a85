package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// ReadDataset loads a local file for SubmitDataset.
func ReadDataset(path string) (*ports.DatasetFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return &ports.DatasetFile{Name: filepath.Base(path), Content: content}, nil
}
