package metrics

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackzampolin/flatbed/internal/extract"
)

func sampleOutcomes() []extract.Outcome {
	return []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: "p1_table_t1", Strategy: extract.StrategyNative, Page: 1},
			{Name: "p1_text", Strategy: extract.StrategyText, Page: 1},
		}},
		{Page: 2, Blocks: []extract.ResultBlock{
			{Name: "p2_text", Strategy: extract.StrategyOCRPrimary, Page: 2},
		}},
		extract.ErrorOutcome(3, errors.New("boom")),
	}
}

func TestFromOutcomes(t *testing.T) {
	m := FromOutcomes("run-1", "report.pdf", sampleOutcomes(), 250*time.Millisecond)

	if m.RunID != "run-1" || m.Filename != "report.pdf" {
		t.Errorf("identity = (%q, %q), want (run-1, report.pdf)", m.RunID, m.Filename)
	}
	if m.Pages != 3 {
		t.Errorf("Pages = %d, want 3", m.Pages)
	}
	if m.Sheets != 4 {
		t.Errorf("Sheets = %d, want 4", m.Sheets)
	}
	if m.Tables != 1 {
		t.Errorf("Tables = %d, want 1", m.Tables)
	}
	if m.OCRPages != 1 {
		t.Errorf("OCRPages = %d, want 1", m.OCRPages)
	}
	if m.ErrorPages != 1 {
		t.Errorf("ErrorPages = %d, want 1", m.ErrorPages)
	}
	want := map[string]int{"native": 1, "text": 1, "ocr_primary": 1, "error": 1}
	if !reflect.DeepEqual(m.Strategies, want) {
		t.Errorf("Strategies = %v, want %v", m.Strategies, want)
	}
}

func TestRecorder_RecordAndSummarize(t *testing.T) {
	rec, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	ctx := context.Background()
	runs := []RunMetrics{
		{
			RunID: "a", Filename: "one.pdf",
			Pages: 2, Sheets: 3, Tables: 1, OCRPages: 1,
			Duration:   100 * time.Millisecond,
			Strategies: map[string]int{"native": 1, "text": 2},
		},
		{
			RunID: "b", Filename: "two.pdf",
			Pages: 4, Sheets: 5, Tables: 2, ErrorPages: 1,
			Duration:   300 * time.Millisecond,
			Strategies: map[string]int{"native": 2, "ocr_primary": 1},
		},
	}
	for _, m := range runs {
		if err := rec.Record(ctx, m); err != nil {
			t.Fatalf("Record(%s) error = %v", m.RunID, err)
		}
	}

	got, err := rec.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := Summary{
		Runs: 2, Pages: 6, Sheets: 8, Tables: 3,
		OCRPages: 1, ErrorPages: 1,
		AvgDuration: 200 * time.Millisecond,
		Strategies:  map[string]int{"native": 3, "ocr_primary": 1, "text": 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestRecorder_EmptySummarize(t *testing.T) {
	rec, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	got, err := rec.Summarize(context.Background())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.Runs != 0 || got.Pages != 0 || got.AvgDuration != 0 {
		t.Errorf("Summarize() = %+v, want zeros", got)
	}
	if len(got.Strategies) != 0 {
		t.Errorf("Strategies = %v, want empty", got.Strategies)
	}
}

func TestRecorder_DuplicateRunID(t *testing.T) {
	rec, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	ctx := context.Background()
	m := RunMetrics{RunID: "dup", Filename: "x.pdf", Pages: 1}
	if err := rec.Record(ctx, m); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	if err := rec.Record(ctx, m); err == nil {
		t.Error("second Record() with the same run id succeeded, want error")
	}
}
