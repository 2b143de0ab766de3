//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine is the primary OCR engine, using the gosseract
// bindings to libtesseract. A fresh client is created per call so the
// engine is safe for concurrent use.
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
// native library aborts rather than erroring when it is unusable, so
// construction runs under recover.
func (e *GosseractEngine) Available() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// Recognize performs OCR on the encoded image.
func (e *GosseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if e.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
