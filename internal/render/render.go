// Package render rasterizes PDF pages by shelling out to pdftoppm
// (poppler-utils). Rendered pages feed the grid detector and the OCR
// engines; pages are rendered one at a time so the scheduler controls
// parallelism.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	xdraw "golang.org/x/image/draw"
)

// Renderer renders single PDF pages to PNG via an external pdftoppm binary.
type Renderer struct {
	binary string
	log    *slog.Logger
}

// New creates a Renderer that invokes the given binary. An empty binary
// defaults to "pdftoppm" on PATH.
func New(binary string, logger *slog.Logger) *Renderer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{binary: binary, log: logger}
}

// Available reports whether the configured binary resolves on PATH.
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// PNG renders one page (1-based) to PNG bytes at the given resolution.
// The render is retried once on failure; pdftoppm occasionally fails
// transiently under temp-dir pressure.
func (r *Renderer) PNG(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = r.renderPage(ctx, pdfPath, page, dpi)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Image renders one page and decodes the result.
func (r *Renderer) Image(ctx context.Context, pdfPath string, page, dpi int) (image.Image, error) {
	data, err := r.PNG(ctx, pdfPath, page, dpi)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	return img, nil
}

// renderPage runs pdftoppm for a single page and returns the PNG bytes.
func (r *Renderer) renderPage(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error) {
	// Create temp directory for output
	tmpDir, err := os.MkdirTemp("", "flatbed-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Output prefix for pdftoppm
	outputPrefix := filepath.Join(tmpDir, "page")

	// Run pdftoppm to render the page
	// -png: output PNG format
	// -f N: first page to render
	// -l N: last page to render
	// -r N: resolution in DPI
	// -singlefile: don't add page number suffix
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, r.binary,
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	// pdftoppm with -singlefile creates: <prefix>.png
	srcPath := outputPrefix + ".png"
	if _, err := os.Stat(srcPath); err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image: %w", err)
	}

	r.log.Debug("rendered page", "page", page, "dpi", dpi, "bytes", len(data))
	return data, nil
}

// Grayscale converts img to 8-bit grayscale. Images that are already
// grayscale are returned as-is.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	gray := image.NewGray(img.Bounds())
	xdraw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return gray
}
