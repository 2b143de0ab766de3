package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/cli"
	"github.com/jackzampolin/flatbed/internal/config"
	"github.com/jackzampolin/flatbed/internal/home"
	"github.com/jackzampolin/flatbed/internal/metrics"
	"github.com/jackzampolin/flatbed/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "flatbed",
	Short: "Convert PDF documents into xlsx workbooks",
	Long: `Flatbed converts PDF documents into xlsx workbooks.

Each page runs through a chain of extraction strategies, strongest
first: ruled-line detection on a rendered raster, whitespace alignment
analysis, native text geometry, and OCR for pages with no text layer.
Missing system backends (pdftoppm, tesseract) disable their strategies
instead of failing the conversion.

Detected tables land on their own sheets, remaining page text on
per-page text sheets, and a page that fails entirely becomes an error
sheet, so one bad page never sinks the document.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.flatbed/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "flatbed home directory (default: ~/.flatbed)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "output", "yaml", "report output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "", "log format: text or json (default from config)",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the active configuration, preferring an explicit
// --config path, then a config file under --home, then the default
// search paths.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" && homeDir != "" {
		if h, err := home.New(homeDir); err == nil && h.ConfigExists() {
			path = h.ConfigPath()
		}
	}

	cm, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

// newLogger builds the process logger from config, with the
// --log-level and --log-format flags taking precedence. Logs go to
// stderr so that report output on stdout stays machine-readable.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// openRecorder opens the run-metrics store under the home directory.
// Recording is best-effort: any failure here is logged and conversion
// proceeds without metrics.
func openRecorder(logger *slog.Logger) *metrics.Recorder {
	h, err := home.New(homeDir)
	if err != nil {
		logger.Warn("failed to resolve home directory, metrics disabled", "error", err)
		return nil
	}
	if err := h.EnsureExists(); err != nil {
		logger.Warn("failed to create home directory, metrics disabled", "error", err)
		return nil
	}
	rec, err := metrics.Open(h.MetricsPath())
	if err != nil {
		logger.Warn("failed to open metrics store, metrics disabled", "error", err)
		return nil
	}
	return rec
}
