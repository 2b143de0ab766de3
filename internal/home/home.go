package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the flatbed home directory.
	DefaultDirName = ".flatbed"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// MetricsFileName is the conversion metrics database file name.
	MetricsFileName = "metrics.db"

	// ProfilesDirName is the subdirectory for extraction profiles.
	ProfilesDirName = "profiles"
)

// Dir represents the flatbed home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.flatbed).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// MetricsPath returns the path to the metrics database.
func (d *Dir) MetricsPath() string {
	return filepath.Join(d.path, MetricsFileName)
}

// ProfilesPath returns the directory holding named extraction profiles.
func (d *Dir) ProfilesPath() string {
	return filepath.Join(d.path, ProfilesDirName)
}

// ProfilePath returns the path of a named extraction profile.
func (d *Dir) ProfilePath(name string) string {
	return filepath.Join(d.ProfilesPath(), name+".json")
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.ProfilesPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
