// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// QueryFile is the on-disk record of a research question and its results.
// The researcher can save a search to a file and reload it later without
// re-running the pipeline.
type QueryFile struct {
	Question  string              `yaml:"question"`
	MaxPapers int                 `yaml:"max_papers"`
	Results   []types.PaperResult `yaml:"results"`
	Summary   QuerySummary        `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int           `yaml:"total"`
	Elapsed   time.Duration `yaml:"elapsed"`
	Timestamp time.Time     `yaml:"timestamp"`
}

// WriteQueryFile saves a question and its results to a YAML file.
func WriteQueryFile(path, question string, maxPapers int, results []types.PaperResult, elapsed time.Duration) error {
	qf := QueryFile{
		Question:  question,
		MaxPapers: maxPapers,
		Results:   results,
		Summary: QuerySummary{
			Total:     len(results),
			Elapsed:   elapsed,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
