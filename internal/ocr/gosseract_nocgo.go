//go:build !cgo

package ocr

import (
	"context"
	"errors"
)

// GosseractEngine is the primary OCR engine. This build was produced
// with cgo disabled, so the gosseract bindings are not linked; the
// engine reports itself unavailable and the registry's fallback engine
// carries OCR instead.
type GosseractEngine struct {
	languages []string
	dpi       int
}

// NewGosseractEngine creates the engine. dpi is passed to Tesseract as
// user_defined_dpi so rendered pages are not re-guessed.
func NewGosseractEngine(languages []string, dpi int) *GosseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &GosseractEngine{languages: languages, dpi: dpi}
}

// Name returns the engine's identifier.
func (e *GosseractEngine) Name() string { return "gosseract" }

// Available reports whether a Tesseract client can be constructed. The
// bindings require cgo, so it is always false in this build.
func (e *GosseractEngine) Available() bool { return false }

// Recognize performs OCR on the encoded image.
func (e *GosseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return "", errors.New("gosseract engine unavailable: binary built without cgo")
}
