package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jackzampolin/flatbed/internal/config"
)

func TestParse_FullProfile(t *testing.T) {
	data := []byte(`{
		"name": "scanned-forms",
		"tables": {
			"alignment_tolerance": 5.0,
			"line_gap": 40,
			"min_rows": 3,
			"min_cols": 2,
			"min_confidence": 0.7
		},
		"render": {"dpi": 400, "ocr_dpi": 200},
		"ocr": {"languages": ["eng", "deu"]}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Name != "scanned-forms" {
		t.Errorf("Name = %q, want %q", p.Name, "scanned-forms")
	}
	if p.Tables == nil || p.Tables.MinConfidence == nil || *p.Tables.MinConfidence != 0.7 {
		t.Errorf("Tables.MinConfidence = %v, want 0.7", p.Tables)
	}
	if p.Render == nil || p.Render.DPI == nil || *p.Render.DPI != 400 {
		t.Errorf("Render.DPI = %v, want 400", p.Render)
	}
	if p.OCR == nil || !reflect.DeepEqual(p.OCR.Languages, []string{"eng", "deu"}) {
		t.Errorf("OCR.Languages = %v, want [eng deu]", p.OCR)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", `{"tables": {"min_rows": 2}}`},
		{"unknown field", `{"name": "x", "detectors": {}}`},
		{"confidence out of range", `{"name": "x", "tables": {"min_confidence": 3}}`},
		{"zero tolerance", `{"name": "x", "tables": {"alignment_tolerance": 0}}`},
		{"dpi too low", `{"name": "x", "render": {"dpi": 10}}`},
		{"fractional rows", `{"name": "x", "tables": {"min_rows": 2.5}}`},
		{"bad language code", `{"name": "x", "ocr": {"languages": ["english"]}}`},
		{"empty languages", `{"name": "x", "ocr": {"languages": []}}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%s) succeeded, want error", tt.data)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tol := 6.0
	rows := 4
	dpi := 450
	p := &Profile{
		Name:   "dense-tables",
		Tables: &TablesOverride{AlignmentTolerance: &tol, MinRows: &rows},
		Render: &RenderOverride{DPI: &dpi},
		OCR:    &OCROverride{Languages: []string{"fra"}},
	}

	cfg := config.DefaultConfig()
	p.Apply(cfg)

	if cfg.Tables.AlignmentTolerance != 6.0 {
		t.Errorf("AlignmentTolerance = %v, want 6.0", cfg.Tables.AlignmentTolerance)
	}
	if cfg.Tables.MinRows != 4 {
		t.Errorf("MinRows = %d, want 4", cfg.Tables.MinRows)
	}
	if cfg.Render.DPI != 450 {
		t.Errorf("Render.DPI = %d, want 450", cfg.Render.DPI)
	}
	if !reflect.DeepEqual(cfg.OCR.Languages, []string{"fra"}) {
		t.Errorf("OCR.Languages = %v, want [fra]", cfg.OCR.Languages)
	}

	// Untouched settings keep their defaults.
	want := config.DefaultConfig()
	if cfg.Tables.LineGap != want.Tables.LineGap {
		t.Errorf("LineGap = %v, want default %v", cfg.Tables.LineGap, want.Tables.LineGap)
	}
	if cfg.Render.OCRDPI != want.Render.OCRDPI {
		t.Errorf("OCRDPI = %d, want default %d", cfg.Render.OCRDPI, want.Render.OCRDPI)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(path, []byte(`{"name": "minimal"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Name != "minimal" {
		t.Errorf("Name = %q, want %q", p.Name, "minimal")
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load() of missing file succeeded, want error")
	}
}
