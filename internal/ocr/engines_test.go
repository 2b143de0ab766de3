package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/jackzampolin/flatbed/internal/testutil"
)

// blankPNG encodes a small white image; OCR on it should yield no text.
func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestExecEngine_MissingBinary(t *testing.T) {
	e := NewExecEngine("flatbed-no-such-binary", nil, 150)
	if e.Available() {
		t.Error("expected Available() to be false")
	}
	if _, err := e.Recognize(context.Background(), blankPNG(t)); err == nil {
		t.Error("expected error for missing binary")
	} else if !strings.Contains(err.Error(), "tesseract failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecEngine_BlankImage(t *testing.T) {
	testutil.RequireBinary(t, "tesseract")

	e := NewExecEngine("tesseract", []string{"eng"}, 150)
	text, err := e.Recognize(context.Background(), blankPNG(t))
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if text != "" {
		t.Errorf("got %q from a blank image, want empty", text)
	}
}

func TestExecEngine_Defaults(t *testing.T) {
	e := NewExecEngine("", nil, 0)
	if e.binary != "tesseract" {
		t.Errorf("binary = %q, want tesseract", e.binary)
	}
	if len(e.languages) != 1 || e.languages[0] != "eng" {
		t.Errorf("languages = %v, want [eng]", e.languages)
	}
}

func TestGosseractEngine_BlankImage(t *testing.T) {
	e := NewGosseractEngine([]string{"eng"}, 150)
	if !e.Available() {
		t.Skip("tesseract library not usable, skipping")
	}

	text, err := e.Recognize(context.Background(), blankPNG(t))
	if err != nil {
		// Tesseract reports an empty page as an error in some builds.
		t.Logf("Recognize() on blank image: %v", err)
		return
	}
	if text != "" {
		t.Errorf("got %q from a blank image, want empty", text)
	}
}

func TestGosseractEngine_CanceledContext(t *testing.T) {
	e := NewGosseractEngine(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, blankPNG(t)); err == nil {
		t.Error("expected error for canceled context")
	}
}
