// Package pdf wraps document access for the conversion pipeline.
//
// Structure validation and page counting go through pdfcpu; the text
// layer (positioned runs) is read with ledongthuc/pdf. A Document is
// opened once per conversion, shared read-only across page workers,
// and must be closed by the owner on every exit path.
package pdf

import (
	"errors"
	"fmt"
	"os"

	ledpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrInvalid marks a file that cannot be opened or parsed as a PDF.
var ErrInvalid = errors.New("invalid pdf document")

// TextRun is one positioned piece of text on a page.
type TextRun struct {
	Text     string
	X        float64 // left edge, PDF points, origin bottom-left
	Y        float64 // baseline
	W        float64 // advance width
	FontSize float64
	Font     string
}

// Document is an opened, validated PDF.
type Document struct {
	path      string
	file      *os.File
	reader    *ledpdf.Reader
	pageCount int
}

// Open validates the file and prepares page access.
// Any structural failure is reported as ErrInvalid.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	reader, err := ledpdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return &Document{
		path:      path,
		file:      f,
		reader:    reader,
		pageCount: pageCount,
	}, nil
}

// Path returns the on-disk location of the document.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Page returns a read-only view of the 1-based page number.
func (d *Document) Page(num int) Page {
	return Page{Number: num, doc: d}
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

// Page is a read-only view of one document page.
type Page struct {
	Number int
	doc    *Document
}

// Runs returns the page's positioned text runs in content-stream order.
// Pages outside the text reader's range, or without a text layer,
// return nil.
func (p Page) Runs() []TextRun {
	r := p.doc.reader
	if p.Number < 1 || p.Number > r.NumPage() {
		return nil
	}
	page := r.Page(p.Number)
	if page.V.IsNull() {
		return nil
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	runs := make([]TextRun, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		runs = append(runs, TextRun{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			Font:     t.Font,
		})
	}
	return runs
}
