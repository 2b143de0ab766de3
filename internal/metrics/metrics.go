// Package metrics records per-conversion run statistics in a local
// SQLite database and aggregates them for reporting.
package metrics

import (
	"time"

	"github.com/jackzampolin/flatbed/internal/extract"
)

// RunMetrics summarizes one conversion run.
type RunMetrics struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	Filename   string         `json:"filename" yaml:"filename"`
	Pages      int            `json:"pages" yaml:"pages"`
	Sheets     int            `json:"sheets" yaml:"sheets"`
	Tables     int            `json:"tables" yaml:"tables"`
	OCRPages   int            `json:"ocr_pages" yaml:"ocr_pages"`
	ErrorPages int            `json:"error_pages" yaml:"error_pages"`
	Duration   time.Duration  `json:"duration" yaml:"duration"`
	Strategies map[string]int `json:"strategies" yaml:"strategies"`
}

// FromOutcomes tallies run metrics from the per-page outcomes.
func FromOutcomes(runID, filename string, outcomes []extract.Outcome, duration time.Duration) RunMetrics {
	m := RunMetrics{
		RunID:      runID,
		Filename:   filename,
		Pages:      len(outcomes),
		Duration:   duration,
		Strategies: make(map[string]int),
	}
	for _, o := range outcomes {
		m.Sheets += len(o.Blocks)
		m.Tables += o.Tables()
		if o.UsedOCR() {
			m.OCRPages++
		}
		if o.Failed() {
			m.ErrorPages++
		}
		for _, b := range o.Blocks {
			m.Strategies[string(b.Strategy)]++
		}
	}
	return m
}

// Summary aggregates all recorded runs.
type Summary struct {
	Runs        int            `json:"runs" yaml:"runs"`
	Pages       int            `json:"pages" yaml:"pages"`
	Sheets      int            `json:"sheets" yaml:"sheets"`
	Tables      int            `json:"tables" yaml:"tables"`
	OCRPages    int            `json:"ocr_pages" yaml:"ocr_pages"`
	ErrorPages  int            `json:"error_pages" yaml:"error_pages"`
	AvgDuration time.Duration  `json:"avg_duration" yaml:"avg_duration"`
	Strategies  map[string]int `json:"strategies" yaml:"strategies"`
}
