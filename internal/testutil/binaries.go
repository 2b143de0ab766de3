package testutil

import (
	"os/exec"
	"testing"
)

// RequireBinary skips the test when the named binary is not on PATH.
// Render and OCR tests need poppler-utils or tesseract installed.
func RequireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found on PATH, skipping", name)
	}
}
