package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RunPlan describes a scripted workflow: upload, configure, train, predict.
type RunPlan struct {
	Dataset     string   `yaml:"dataset"`
	Target      string   `yaml:"target"`
	Task        string   `yaml:"task"`
	Algorithm   string   `yaml:"algorithm"`
	Predictions []string `yaml:"predictions"`
}

// LoadRunPlan reads a YAML plan. A relative dataset path is resolved against the plan's directory.
func LoadRunPlan(path string) (*RunPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan RunPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	if plan.Dataset != "" && !filepath.IsAbs(plan.Dataset) {
		plan.Dataset = filepath.Join(filepath.Dir(path), plan.Dataset)
	}
	return &plan, nil
}

// Merge overlays the non-empty fields of o onto p.
func (p *RunPlan) Merge(o RunPlan) {
	if o.Dataset != "" {
		p.Dataset = o.Dataset
	}
	if o.Target != "" {
		p.Target = o.Target
	}
	if o.Task != "" {
		p.Task = o.Task
	}
	if o.Algorithm != "" {
		p.Algorithm = o.Algorithm
	}
	if len(o.Predictions) > 0 {
		p.Predictions = o.Predictions
	}
}

// Validate checks the fields every plan needs.
func (p *RunPlan) Validate() error {
	switch {
	case p.Dataset == "":
		return fmt.Errorf("a dataset is required (--file or plan.dataset)")
	case p.Target == "":
		return fmt.Errorf("a target column is required (--target or plan.target)")
	}
	return nil
}
