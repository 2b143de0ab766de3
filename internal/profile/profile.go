// Package profile loads extraction tuning profiles.
//
// A profile is a JSON document that overrides detector and OCR
// settings for a class of documents, say scanned forms or financial
// reports. Profiles are validated against an embedded JSON schema
// before use; an invalid profile is rejected with the validation
// error.
package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/flatbed/internal/config"
)

//go:embed profile.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Profile overrides extraction settings. Absent fields keep the
// configured value.
type Profile struct {
	Name   string          `json:"name"`
	Tables *TablesOverride `json:"tables,omitempty"`
	Render *RenderOverride `json:"render,omitempty"`
	OCR    *OCROverride    `json:"ocr,omitempty"`
}

// TablesOverride tunes the table detectors.
type TablesOverride struct {
	AlignmentTolerance *float64 `json:"alignment_tolerance,omitempty"`
	LineGap            *float64 `json:"line_gap,omitempty"`
	MinRows            *int     `json:"min_rows,omitempty"`
	MinCols            *int     `json:"min_cols,omitempty"`
	MinConfidence      *float64 `json:"min_confidence,omitempty"`
}

// RenderOverride tunes raster resolutions.
type RenderOverride struct {
	DPI    *int `json:"dpi,omitempty"`
	OCRDPI *int `json:"ocr_dpi,omitempty"`
}

// OCROverride tunes the OCR engines.
type OCROverride struct {
	Languages []string `json:"languages,omitempty"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("profile.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load profile schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("profile.schema.json")
	})
	return schema, schemaErr
}

// Parse validates and decodes a profile document.
func Parse(data []byte) (*Profile, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("profile does not match schema: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Apply writes the profile's overrides onto cfg.
func (p *Profile) Apply(cfg *config.Config) {
	if t := p.Tables; t != nil {
		if t.AlignmentTolerance != nil {
			cfg.Tables.AlignmentTolerance = *t.AlignmentTolerance
		}
		if t.LineGap != nil {
			cfg.Tables.LineGap = *t.LineGap
		}
		if t.MinRows != nil {
			cfg.Tables.MinRows = *t.MinRows
		}
		if t.MinCols != nil {
			cfg.Tables.MinCols = *t.MinCols
		}
		if t.MinConfidence != nil {
			cfg.Tables.MinConfidence = *t.MinConfidence
		}
	}
	if r := p.Render; r != nil {
		if r.DPI != nil {
			cfg.Render.DPI = *r.DPI
		}
		if r.OCRDPI != nil {
			cfg.Render.OCRDPI = *r.OCRDPI
		}
	}
	if o := p.OCR; o != nil && len(o.Languages) > 0 {
		cfg.OCR.Languages = o.Languages
	}
}
