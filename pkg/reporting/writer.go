/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Writes a detection session to a timestamped JSON file so results can be
compared across runs and corpus versions.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/isadetect/pkg/scan"
)

// Report is one detection session.
type Report struct {
	Session       string                 `json:"session"`
	CreatedAt     time.Time              `json:"created_at"`
	CorpusDir     string                 `json:"corpus_dir"`
	Architectures int                    `json:"architectures"`
	Smoothing     float64                `json:"smoothing"`
	Results       []scan.DetectionResult `json:"results"`
	Failed        map[string]string      `json:"failed,omitempty"`
}

// NewReport starts a report with a fresh session id.
func NewReport(corpusDir string, architectures int, smoothing float64) *Report {
	return &Report{
		Session:       uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		CorpusDir:     corpusDir,
		Architectures: architectures,
		Smoothing:     smoothing,
	}
}

// AddFailure records a file that could not be processed.
func (r *Report) AddFailure(file string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[file] = err.Error()
}

// WriteResults writes the report to dir and returns the file path.
// File name: 2024-06-11_01-30-00_<session>.json
func WriteResults(dir string, report *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	timestamp := report.CreatedAt.Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", timestamp, report.Session))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}
	return path, nil
}

// ReadResults loads a report written by WriteResults.
func ReadResults(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &report, nil
}
