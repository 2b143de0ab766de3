package workbook

import (
	"bytes"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/flatbed/internal/extract"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestAssemble_SheetsInOrder(t *testing.T) {
	outcomes := []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: "p1_table_t1", Rows: [][]string{{"a", "b"}, {"c", "d"}}, Page: 1},
			{Name: "p1_text", Rows: [][]string{{"page", "text"}, {"1", "hello"}}, Page: 1},
		}},
		{Page: 2, Blocks: []extract.ResultBlock{
			{Name: "p2_text", Rows: [][]string{{"page", "content"}, {"2", "world"}}, Page: 2},
		}},
	}

	data, err := Assemble(outcomes, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	want := []string{"p1_table_t1", "p1_text", "p2_text"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet list = %v, want %v", got, want)
	}

	got, err := f.GetCellValue("p1_table_t1", "B2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "d" {
		t.Errorf("B2 = %q, want %q", got, "d")
	}
}

func TestAssemble_CellValues(t *testing.T) {
	outcomes := []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: "p1_text", Rows: [][]string{{"page", "content"}, {"1", "line one\nline two"}}, Page: 1},
		}},
	}

	data, err := Assemble(outcomes, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	rows, err := f.GetRows("p1_text")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{{"page", "content"}, {"1", "line one\nline two"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestAssemble_Empty(t *testing.T) {
	data, err := Assemble(nil, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	if got := f.GetSheetList(); len(got) != 1 || got[0] != defaultSheet {
		t.Errorf("sheet list = %v, want just %q", got, defaultSheet)
	}
	rows, err := f.GetRows(defaultSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("default sheet has %d rows, want 0", len(rows))
	}
}

func TestAssemble_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", 40)
	outcomes := []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: long, Rows: [][]string{{"a", "a"}, {"a", "a"}}, Page: 1},
		}},
	}

	data, err := Assemble(outcomes, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	want := []string{long[:31]}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet list = %v, want %v", got, want)
	}
}

func TestAssemble_DisambiguatesCollisions(t *testing.T) {
	// Both names truncate to the same 31 characters.
	first := strings.Repeat("x", 35)
	second := strings.Repeat("x", 34) + "y"
	outcomes := []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: first, Rows: [][]string{{"1", "1"}}, Page: 1},
			{Name: second, Rows: [][]string{{"2", "2"}}, Page: 1},
		}},
	}

	data, err := Assemble(outcomes, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	want := []string{strings.Repeat("x", 31), strings.Repeat("x", 29) + "_2"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet list = %v, want %v", got, want)
	}
}

func TestAssemble_SkipsUnwritableSheet(t *testing.T) {
	// Colons are not allowed in sheet names; the bad block is dropped
	// and the rest of the workbook survives.
	outcomes := []extract.Outcome{
		{Page: 1, Blocks: []extract.ResultBlock{
			{Name: "bad:name", Rows: [][]string{{"x", "x"}}, Page: 1},
			{Name: "p1_text", Rows: [][]string{{"page", "content"}, {"1", "ok"}}, Page: 1},
		}},
	}

	data, err := Assemble(outcomes, discard())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	f := open(t, data)
	want := []string{"p1_text"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet list = %v, want %v", got, want)
	}
}

func TestSafeName(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short name unchanged", "p1_text", "p1_text"},
		{"long name truncated", strings.Repeat("a", 40), strings.Repeat("a", 31)},
		{"collision gets suffix", strings.Repeat("a", 40), strings.Repeat("a", 29) + "_2"},
		{"second collision counts up", strings.Repeat("a", 40), strings.Repeat("a", 29) + "_3"},
		{"case insensitive collision", "P1_TEXT", "P1_TEXT_2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := safeName(tt.in, used)
			if got != tt.want {
				t.Errorf("safeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) > maxSheetName {
				t.Errorf("safeName(%q) length = %d, exceeds %d", tt.in, len(got), maxSheetName)
			}
			used[strings.ToLower(got)] = true
		})
	}
}
