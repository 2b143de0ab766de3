package config

import "runtime"

// Config holds flatbed configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Workers int        `mapstructure:"workers" yaml:"workers"` // 0 = min(4, logical CPUs)
	Render  RenderCfg  `mapstructure:"render" yaml:"render"`
	OCR     OCRCfg     `mapstructure:"ocr" yaml:"ocr"`
	Tables  TablesCfg  `mapstructure:"tables" yaml:"tables"`
	Limits  LimitsCfg  `mapstructure:"limits" yaml:"limits"`
	Logging LoggingCfg `mapstructure:"logging" yaml:"logging"`
}

// RenderCfg configures the page rasterizer.
type RenderCfg struct {
	Binary string `mapstructure:"binary" yaml:"binary"` // pdftoppm path (supports ${ENV_VAR} syntax)
	DPI    int    `mapstructure:"dpi" yaml:"dpi"`       // resolution for table line detection
	OCRDPI int    `mapstructure:"ocr_dpi" yaml:"ocr_dpi"`
}

// OCRCfg configures the OCR engines.
type OCRCfg struct {
	Languages       []string `mapstructure:"languages" yaml:"languages"`
	PrimaryEngine   string   `mapstructure:"primary_engine" yaml:"primary_engine"`
	FallbackEngine  string   `mapstructure:"fallback_engine" yaml:"fallback_engine"`
	TesseractBinary string   `mapstructure:"tesseract_binary" yaml:"tesseract_binary"` // fallback engine (supports ${ENV_VAR} syntax)
}

// TablesCfg tunes the table detectors.
type TablesCfg struct {
	AlignmentTolerance float64 `mapstructure:"alignment_tolerance" yaml:"alignment_tolerance"` // points
	LineGap            float64 `mapstructure:"line_gap" yaml:"line_gap"`                       // cluster break threshold, points
	MinRows            int     `mapstructure:"min_rows" yaml:"min_rows"`
	MinCols            int     `mapstructure:"min_cols" yaml:"min_cols"`
	MinConfidence      float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
}

// LimitsCfg bounds input handled by the CLI shell.
type LimitsCfg struct {
	MaxInputMB int64 `mapstructure:"max_input_mb" yaml:"max_input_mb"`
}

// LoggingCfg configures the default logger.
type LoggingCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers: 0,
		Render: RenderCfg{
			Binary: "pdftoppm",
			DPI:    300,
			OCRDPI: 150,
		},
		OCR: OCRCfg{
			Languages:       []string{"eng"},
			PrimaryEngine:   "gosseract",
			FallbackEngine:  "tesseract",
			TesseractBinary: "tesseract",
		},
		Tables: TablesCfg{
			AlignmentTolerance: 3.0,
			LineGap:            50.0,
			MinRows:            2,
			MinCols:            2,
			MinConfidence:      0.5,
		},
		Limits: LimitsCfg{
			MaxInputMB: 100,
		},
		Logging: LoggingCfg{
			Level:  "info",
			Format: "text",
		},
	}
}

// EffectiveWorkers returns the worker pool size for one conversion.
// An unset value resolves to min(4, logical CPUs).
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// MaxInputBytes returns the input size ceiling in bytes.
func (c *Config) MaxInputBytes() int64 {
	return c.Limits.MaxInputMB * 1024 * 1024
}
