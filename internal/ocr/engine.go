// Package ocr recognizes text on rendered page images. Two engines are
// provided: one backed by the gosseract bindings and a fallback that
// shells out to the tesseract binary. Both require Tesseract installed
// on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import "context"

// Engine recognizes text in an encoded image (PNG, JPEG, TIFF).
type Engine interface {
	// Name returns the engine's identifier.
	Name() string

	// Recognize returns the recognized plain text with surrounding
	// whitespace trimmed.
	Recognize(ctx context.Context, image []byte) (string, error)

	// Available reports whether the engine's backend is usable on this
	// system.
	Available() bool
}
