package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jackzampolin/flatbed/internal/capability"
	"github.com/jackzampolin/flatbed/internal/config"
)

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(small, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	upper := filepath.Join(dir, "DOC.PDF")
	if err := os.WriteFile(upper, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.pdf")
	if err := os.WriteFile(big, bytes.Repeat([]byte{0}, 1<<20+1), 0o644); err != nil {
		t.Fatal(err)
	}
	folder := filepath.Join(dir, "folder.pdf")
	if err := os.Mkdir(folder, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Limits.MaxInputMB = 1

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"lowercase extension", small, false},
		{"uppercase extension", upper, false},
		{"wrong extension", filepath.Join(dir, "doc.txt"), true},
		{"missing file", filepath.Join(dir, "gone.pdf"), true},
		{"directory", folder, true},
		{"over size limit", big, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(tt.path, cfg)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildProbeReport(t *testing.T) {
	tests := []struct {
		name  string
		avail capability.Availability
		want  []string
	}{
		{
			"all backends",
			capability.Availability{AdvancedTables: true, OCRPrimary: true, OCRFallback: true},
			[]string{"lattice", "stream", "native", "text", "ocr_primary", "ocr_fallback"},
		},
		{
			"no backends",
			capability.Availability{},
			[]string{"native", "text"},
		},
		{
			"fallback ocr only",
			capability.Availability{OCRFallback: true},
			[]string{"native", "text", "ocr_fallback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildProbeReport(tt.avail)
			if !reflect.DeepEqual(got.Strategies, tt.want) {
				t.Errorf("strategies = %v, want %v", got.Strategies, tt.want)
			}
			if got.AdvancedTables != tt.avail.AdvancedTables {
				t.Errorf("advanced_tables = %v, want %v", got.AdvancedTables, tt.avail.AdvancedTables)
			}
		})
	}
}
