// Package capability probes the optional native backends at startup.
// A missing backend removes its strategies from the extraction chain
// rather than failing conversion, so each miss is logged once as a
// warning and conversion carries on with what remains.
package capability

import (
	"log/slog"

	"github.com/jackzampolin/flatbed/internal/ocr"
	"github.com/jackzampolin/flatbed/internal/render"
)

// Availability reports which optional backends are usable.
type Availability struct {
	// AdvancedTables gates the lattice and stream strategies. The
	// lattice pass renders pages, so it requires pdftoppm.
	AdvancedTables bool

	// OCRPrimary reports whether the gosseract bindings are usable.
	OCRPrimary bool

	// OCRFallback reports whether the tesseract binary is on PATH.
	OCRFallback bool
}

// OCR reports whether any OCR engine is usable.
func (a Availability) OCR() bool { return a.OCRPrimary || a.OCRFallback }

// Checks supplies the individual probes. Nil fields probe as
// unavailable; tests inject their own functions.
type Checks struct {
	RenderBinary func() bool
	OCRPrimary   func() bool
	OCRFallback  func() bool
}

// DefaultChecks probes the real system: the render and OCR binaries on
// PATH plus a gosseract client construction.
func DefaultChecks(renderBinary, tesseractBinary string) Checks {
	return Checks{
		RenderBinary: render.New(renderBinary, nil).Available,
		OCRPrimary:   ocr.NewGosseractEngine(nil, 0).Available,
		OCRFallback:  ocr.NewExecEngine(tesseractBinary, nil, 0).Available,
	}
}

// Probe runs the availability checks, logging one warning per missing
// backend.
func Probe(checks Checks, logger *slog.Logger) Availability {
	if logger == nil {
		logger = slog.Default()
	}

	available := func(f func() bool) bool { return f != nil && f() }

	a := Availability{
		AdvancedTables: available(checks.RenderBinary),
		OCRPrimary:     available(checks.OCRPrimary),
		OCRFallback:    available(checks.OCRFallback),
	}

	if !a.AdvancedTables {
		logger.Warn("pdftoppm not found, advanced table detection disabled")
	}
	if !a.OCRPrimary {
		logger.Warn("tesseract library not usable, primary OCR disabled")
	}
	if !a.OCRFallback {
		logger.Warn("tesseract binary not found, fallback OCR disabled")
	}
	return a
}
