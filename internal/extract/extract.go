// Package extract runs the per-page extraction strategy chain.
//
// Each page is tried against an ordered set of strategies with
// graceful degradation: ruled line detection on the rendered page
// image, whitespace column alignment, then native text geometry. The
// first family to produce tables wins the table concern. Digital text
// is read regardless of the table outcome, and OCR fills in only for
// pages that yielded neither text nor tables. Strategies that are
// unavailable on the host, or that fail internally, degrade to "found
// nothing" rather than failing the page.
package extract

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/jackzampolin/flatbed/internal/capability"
	"github.com/jackzampolin/flatbed/internal/ocr"
	"github.com/jackzampolin/flatbed/internal/pdf"
	"github.com/jackzampolin/flatbed/internal/render"
	"github.com/jackzampolin/flatbed/internal/tables"
)

var errNoRasterizer = errors.New("no rasterizer configured")

// Strategy identifies which extraction strategy produced a block.
type Strategy string

const (
	StrategyLattice     Strategy = "lattice"
	StrategyStream      Strategy = "stream"
	StrategyNative      Strategy = "native"
	StrategyText        Strategy = "text"
	StrategyOCRPrimary  Strategy = "ocr_primary"
	StrategyOCRFallback Strategy = "ocr_fallback"
	StrategyNone        Strategy = "none"
	StrategyError       Strategy = "error"
)

// IsTable reports whether the strategy detects tables.
func (s Strategy) IsTable() bool {
	return s == StrategyLattice || s == StrategyStream || s == StrategyNative
}

// IsOCR reports whether the strategy is an OCR engine.
func (s Strategy) IsOCR() bool {
	return s == StrategyOCRPrimary || s == StrategyOCRFallback
}

// ResultBlock is one worksheet worth of extracted content.
type ResultBlock struct {
	Name     string
	Rows     [][]string
	Strategy Strategy
	Page     int
}

// Outcome holds everything extracted from one page. A page produces
// either content blocks or a single error block, never both.
type Outcome struct {
	Page   int
	Blocks []ResultBlock
}

// Failed reports whether the page produced an error block instead of
// content.
func (o Outcome) Failed() bool {
	return len(o.Blocks) == 1 && o.Blocks[0].Strategy == StrategyError
}

// Tables counts the table blocks in the outcome.
func (o Outcome) Tables() int {
	n := 0
	for _, b := range o.Blocks {
		if b.Strategy.IsTable() {
			n++
		}
	}
	return n
}

// UsedOCR reports whether any block came from an OCR engine.
func (o Outcome) UsedOCR() bool {
	for _, b := range o.Blocks {
		if b.Strategy.IsOCR() {
			return true
		}
	}
	return false
}

// rasterizer renders document pages. *render.Renderer satisfies it.
type rasterizer interface {
	Image(ctx context.Context, pdfPath string, page, dpi int) (image.Image, error)
	PNG(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error)
}

// gridDetector finds ruled tables on a page raster.
type gridDetector interface {
	Detect(img *image.Gray, dpi int, words []tables.Fragment) []tables.Table
}

// textDetector finds tables in positioned text fragments.
type textDetector interface {
	Detect(words []tables.Fragment) []tables.Table
}

// Options configures an Extractor.
type Options struct {
	// PDFPath is the on-disk document handed to the rasterizer.
	PDFPath string

	// Renderer rasterizes pages for lattice detection and OCR. Nil
	// disables both raster consumers.
	Renderer *render.Renderer

	// Tables tunes the three detectors. Zero value means defaults.
	Tables tables.Config

	// RenderDPI is the raster resolution for ruled line detection.
	RenderDPI int

	// OCRDPI is the raster resolution for OCR input.
	OCRDPI int

	// Primary and Fallback are the OCR engines, tried in that order.
	Primary  ocr.Engine
	Fallback ocr.Engine

	Logger *slog.Logger
}

// Extractor runs the strategy chain against pages of one document.
// Safe for concurrent use across page workers.
type Extractor struct {
	path      string
	raster    rasterizer
	lattice   gridDetector
	stream    textDetector
	native    textDetector
	primary   ocr.Engine
	fallback  ocr.Engine
	renderDPI int
	ocrDPI    int
	log       *slog.Logger
}

// New builds an Extractor from options, applying defaults for unset
// tuning values.
func New(opts Options) *Extractor {
	cfg := opts.Tables
	if cfg == (tables.Config{}) {
		cfg = tables.DefaultConfig()
	}
	if opts.RenderDPI <= 0 {
		opts.RenderDPI = 300
	}
	if opts.OCRDPI <= 0 {
		opts.OCRDPI = 150
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Extractor{
		path:      opts.PDFPath,
		lattice:   tables.NewLatticeDetector(cfg),
		stream:    tables.NewStreamDetector(cfg),
		native:    tables.NewNativeDetector(cfg),
		primary:   opts.Primary,
		fallback:  opts.Fallback,
		renderDPI: opts.RenderDPI,
		ocrDPI:    opts.OCRDPI,
		log:       opts.Logger,
	}
	if opts.Renderer != nil {
		e.raster = opts.Renderer
	}
	return e
}

// Extract runs the full strategy chain for one page and returns its
// outcome. Internal strategy failures degrade and never surface as
// errors; the caller converts panics from the PDF layer into error
// outcomes at the worker boundary.
func (e *Extractor) Extract(ctx context.Context, pageNum int, runs []pdf.TextRun, avail capability.Availability) Outcome {
	words := tables.Words(runs)

	var (
		found    []tables.Table
		strategy Strategy
	)

	if avail.AdvancedTables {
		if img, err := e.renderGray(ctx, pageNum); err != nil {
			e.log.Debug("page render failed, skipping ruled line detection",
				"page", pageNum, "error", err)
		} else {
			found = e.lattice.Detect(img, e.renderDPI, words)
			strategy = StrategyLattice
		}
		if len(found) == 0 {
			found = e.stream.Detect(words)
			strategy = StrategyStream
		}
	}
	if len(found) == 0 {
		found = e.native.Detect(words)
		strategy = StrategyNative
	}

	var blocks []ResultBlock
	for i, t := range found {
		blocks = append(blocks, tableBlock(pageNum, i+1, strategy, t))
	}

	text := assembleText(words)
	textStrategy := StrategyText

	if text == "" && len(blocks) == 0 && avail.OCR() {
		e.log.Info("no text found, attempting ocr", "page", pageNum)
		text, textStrategy = e.ocrText(ctx, pageNum, avail)
	}

	if len(blocks) > 0 {
		if text != "" {
			blocks = append(blocks, textBlock(pageNum, text, textStrategy))
		}
	} else {
		blocks = append(blocks, contentBlock(pageNum, text, textStrategy))
	}

	return Outcome{Page: pageNum, Blocks: blocks}
}

// renderGray rasterizes the page for lattice detection.
func (e *Extractor) renderGray(ctx context.Context, pageNum int) (*image.Gray, error) {
	if e.raster == nil {
		return nil, errNoRasterizer
	}
	img, err := e.raster.Image(ctx, e.path, pageNum, e.renderDPI)
	if err != nil {
		return nil, err
	}
	return render.Grayscale(img), nil
}

// ocrText renders the page and runs the available engines in order,
// returning the first non-empty recognition. Render and engine
// failures degrade to empty text.
func (e *Extractor) ocrText(ctx context.Context, pageNum int, avail capability.Availability) (string, Strategy) {
	if e.raster == nil {
		e.log.Debug("no rasterizer, skipping ocr", "page", pageNum)
		return "", StrategyNone
	}
	png, err := e.raster.PNG(ctx, e.path, pageNum, e.ocrDPI)
	if err != nil {
		e.log.Debug("page render failed, skipping ocr", "page", pageNum, "error", err)
		return "", StrategyNone
	}

	type attempt struct {
		engine   ocr.Engine
		enabled  bool
		strategy Strategy
	}
	for _, a := range []attempt{
		{e.primary, avail.OCRPrimary, StrategyOCRPrimary},
		{e.fallback, avail.OCRFallback, StrategyOCRFallback},
	} {
		if !a.enabled || a.engine == nil {
			continue
		}
		text, err := a.engine.Recognize(ctx, png)
		if err != nil {
			e.log.Debug("ocr engine failed", "page", pageNum, "engine", a.engine.Name(), "error", err)
			continue
		}
		if text = normalizeText(text); text != "" {
			e.log.Info("ocr recognized text", "page", pageNum, "engine", a.engine.Name(), "chars", len(text))
			return text, a.strategy
		}
	}
	return "", StrategyNone
}
