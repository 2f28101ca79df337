/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Run report output for langfilter. Writes the statistics of a finished
filter run as a JSON report, one file per run, grouped by command and named by the
run identifier so reports line up with the matching log file.
*/

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/langfilter/pkg/interfaces"
)

// RunReport is the on-disk form of one run's statistics
type RunReport struct {
	*interfaces.RunStats
	Version    string    `json:"version"`
	AcceptRate float64   `json:"accept_rate"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRunReport derives a report from stats
func NewRunReport(stats *interfaces.RunStats, version string) *RunReport {
	return &RunReport{
		RunStats:   stats,
		Version:    version,
		AcceptRate: stats.AcceptRate(),
		FinishedAt: stats.StartedAt.Add(stats.Duration),
	}
}

// reportName builds 2024-06-11_01-30-00_filter_1a2b3c4d.json from the run's start
func reportName(stats *interfaces.RunStats) string {
	started := stats.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	runID := stats.RunID
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID == "" {
		runID = "norunid"
	}
	return fmt.Sprintf("%s_%s_%s.json", started.Format("2006-01-02_15-04-05"), stats.Command, runID)
}

// WriteRunReport writes the report of stats to dir/<command>/ and returns its path
func WriteRunReport(dir, version string, stats *interfaces.RunStats) (string, *RunReport, error) {
	if stats == nil {
		return "", nil, errors.New("no run statistics to write")
	}
	if stats.Command == "" {
		return "", nil, errors.New("run statistics have no command")
	}
	if dir == "" {
		dir = "metrics"
	}

	reportDir := filepath.Join(dir, stats.Command)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	report := NewRunReport(stats, version)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(reportDir, reportName(stats))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write report: %w", err)
	}
	return path, report, nil
}

// ReadRunReport loads a report written by WriteRunReport
func ReadRunReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	report := &RunReport{RunStats: &interfaces.RunStats{}}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return report, nil
}
