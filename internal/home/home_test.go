package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-flatbed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-flatbed" {
			t.Errorf("expected path /tmp/test-flatbed, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-flatbed")

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-flatbed/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("MetricsPath", func(t *testing.T) {
		expected := "/tmp/test-flatbed/metrics.db"
		if dir.MetricsPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.MetricsPath())
		}
	})

	t.Run("ProfilePath", func(t *testing.T) {
		expected := "/tmp/test-flatbed/profiles/invoices.json"
		if dir.ProfilePath("invoices") != expected {
			t.Errorf("expected %s, got %s", expected, dir.ProfilePath("invoices"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	// Use a temp directory
	tmpDir := t.TempDir()
	flatbedDir := filepath.Join(tmpDir, "flatbed-test")

	dir, err := New(flatbedDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Directory shouldn't exist yet
	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	// Create it
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	// Now it should exist
	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	// Profiles directory should also exist
	if _, err := os.Stat(dir.ProfilesPath()); os.IsNotExist(err) {
		t.Error("profiles directory should exist after EnsureExists")
	}
}

func TestDir_ConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(tmpDir)

	// Config doesn't exist
	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}

	// Create a config file
	configPath := dir.ConfigPath()
	if err := os.WriteFile(configPath, []byte("test: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Now it should exist
	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}
