// Package convert orchestrates document conversion end to end: open
// and validate the input, probe strategy availability once, fan pages
// out to bounded workers, and assemble the outcomes into a workbook.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/flatbed/internal/capability"
	"github.com/jackzampolin/flatbed/internal/config"
	"github.com/jackzampolin/flatbed/internal/extract"
	"github.com/jackzampolin/flatbed/internal/metrics"
	"github.com/jackzampolin/flatbed/internal/ocr"
	"github.com/jackzampolin/flatbed/internal/pdf"
	"github.com/jackzampolin/flatbed/internal/render"
	"github.com/jackzampolin/flatbed/internal/tables"
	"github.com/jackzampolin/flatbed/internal/workbook"
)

// ErrInvalidInput marks a document that cannot be opened or validated.
// It is the only failure a conversion reports for input problems;
// everything downstream degrades to per-page error or placeholder
// sheets.
var ErrInvalidInput = errors.New("invalid input document")

// Result is a finished conversion.
type Result struct {
	WorkbookBytes     []byte
	SuggestedFilename string
	Metrics           metrics.RunMetrics
}

// Converter runs conversions with one availability probe shared across
// all of them.
type Converter struct {
	cfg      *config.Config
	log      *slog.Logger
	recorder *metrics.Recorder
	primary  ocr.Engine
	fallback ocr.Engine

	probeOnce sync.Once
	avail     capability.Availability
}

// New builds a Converter. The recorder may be nil to skip metrics
// persistence.
func New(cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder) *Converter {
	if logger == nil {
		logger = slog.Default()
	}

	reg := ocr.NewRegistry()
	reg.SetLogger(logger)
	reg.Register(ocr.NewGosseractEngine(cfg.OCR.Languages, cfg.Render.OCRDPI))
	reg.Register(ocr.NewExecEngine(cfg.TesseractBinary(), cfg.OCR.Languages, cfg.Render.OCRDPI))

	return &Converter{
		cfg:      cfg,
		log:      logger,
		recorder: recorder,
		primary:  lookupEngine(reg, cfg.OCR.PrimaryEngine, logger),
		fallback: lookupEngine(reg, cfg.OCR.FallbackEngine, logger),
	}
}

func lookupEngine(reg *ocr.Registry, name string, log *slog.Logger) ocr.Engine {
	if name == "" {
		return nil
	}
	engine, err := reg.Get(name)
	if err != nil {
		log.Warn("configured ocr engine not registered", "engine", name)
		return nil
	}
	return engine
}

// Availability probes the optional backends once and caches the
// result for the converter's lifetime.
func (c *Converter) Availability() capability.Availability {
	c.probeOnce.Do(func() {
		checks := capability.DefaultChecks(c.cfg.RenderBinary(), c.cfg.TesseractBinary())
		c.avail = capability.Probe(checks, c.log)
	})
	return c.avail
}

// Convert turns the PDF at filePath into an xlsx workbook.
// originalName is the user-facing filename used for the suggested
// output name and metrics.
func (c *Converter) Convert(ctx context.Context, filePath, originalName string) (Result, error) {
	runID := uuid.NewString()
	log := c.log.With("run_id", runID)
	start := time.Now()

	doc, err := pdf.Open(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer doc.Close()

	avail := c.Availability()
	pageCount := doc.PageCount()
	log.Info("starting conversion", "file", originalName, "pages", pageCount)

	ex := extract.New(extract.Options{
		PDFPath:   filePath,
		Renderer:  render.New(c.cfg.RenderBinary(), log),
		Tables:    tablesConfig(c.cfg),
		RenderDPI: c.cfg.Render.DPI,
		OCRDPI:    c.cfg.Render.OCRDPI,
		Primary:   c.primary,
		Fallback:  c.fallback,
		Logger:    log,
	})

	worker := func(ctx context.Context, page int) extract.Outcome {
		return ex.Extract(ctx, page, doc.Page(page).Runs(), avail)
	}
	outcomes := runPages(ctx, pageCount, c.cfg.EffectiveWorkers(), log, worker)

	data, err := workbook.Assemble(outcomes, log)
	if err != nil {
		return Result{}, err
	}

	m := metrics.FromOutcomes(runID, originalName, outcomes, time.Since(start))
	if c.recorder != nil {
		if err := c.recorder.Record(ctx, m); err != nil {
			log.Warn("failed to record run metrics", "error", err)
		}
	}

	log.Info("conversion complete",
		"pages", m.Pages, "sheets", m.Sheets, "tables", m.Tables,
		"error_pages", m.ErrorPages, "duration", m.Duration)

	return Result{
		WorkbookBytes:     data,
		SuggestedFilename: SuggestedFilename(originalName),
		Metrics:           m,
	}, nil
}

// SuggestedFilename swaps the input's extension for .xlsx.
func SuggestedFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = name
	}
	return stem + ".xlsx"
}

func tablesConfig(cfg *config.Config) tables.Config {
	return tables.Config{
		AlignmentTolerance: cfg.Tables.AlignmentTolerance,
		LineGap:            cfg.Tables.LineGap,
		MinRows:            cfg.Tables.MinRows,
		MinCols:            cfg.Tables.MinCols,
		MinConfidence:      cfg.Tables.MinConfidence,
	}
}
