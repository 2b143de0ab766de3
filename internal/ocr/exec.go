package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecEngine is the fallback OCR engine, shelling out to the tesseract
// binary. It covers systems where the native bindings are broken but
// the command line tool works.
type ExecEngine struct {
	binary    string
	languages []string
	dpi       int
}

// NewExecEngine creates the engine. An empty binary defaults to
// "tesseract" on PATH.
func NewExecEngine(binary string, languages []string, dpi int) *ExecEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &ExecEngine{binary: binary, languages: languages, dpi: dpi}
}

// Name returns the engine's identifier.
func (e *ExecEngine) Name() string { return "tesseract" }

// Available reports whether the configured binary resolves on PATH.
func (e *ExecEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Recognize performs OCR on the encoded image. The image is written to
// a temp file because the binary reads from disk.
func (e *ExecEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "flatbed-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(imgPath, image, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	args := []string{imgPath, "stdout", "-l", strings.Join(e.languages, "+")}
	if e.dpi > 0 {
		args = append(args, "--dpi", strconv.Itoa(e.dpi))
	}
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w (output: %s)", err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}
