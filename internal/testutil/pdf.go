// Package testutil builds small PDF fixtures for pipeline tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PlacedText is one text run to place on a fixture page.
type PlacedText struct {
	Text string
	X    float64 // points from left edge
	Y    float64 // points from bottom edge
	Size float64 // font size, 12 when zero
}

// BuildPDF produces a well-formed single-font PDF with one entry in
// pages per page. Pages may be empty (no text layer). The output
// passes pdfcpu validation and yields positioned text runs through
// ledongthuc/pdf.
func BuildPDF(pages [][]PlacedText) []byte {
	n := len(pages)
	// Object layout: 1 catalog, 2 page tree, 3..2+n pages,
	// 3+n..2+2n content streams, 3+2n font.
	fontObj := 3 + 2*n

	var buf bytes.Buffer
	offsets := make([]int, fontObj+1)

	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	write(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))

	for i := range pages {
		write(3+i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontObj, 3+n+i))
	}

	for i, texts := range pages {
		var content strings.Builder
		for _, pt := range texts {
			size := pt.Size
			if size == 0 {
				size = 12
			}
			fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n",
				size, pt.X, pt.Y, escapePDFString(pt.Text))
		}
		stream := content.String()
		write(3+n+i, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	// A flat width table makes glyph advances predictable: half the
	// font size per character.
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	write(fontObj, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		widths))

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", fontObj+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= fontObj; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", fontObj+1, xrefPos)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// WritePDF writes a fixture PDF into a temp dir and returns its path.
func WritePDF(t *testing.T, name string, pages [][]PlacedText) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, BuildPDF(pages), 0o644); err != nil {
		t.Fatalf("failed to write fixture pdf: %v", err)
	}
	return path
}

// OnePagePDF returns a single page with one line of text.
func OnePagePDF(t *testing.T, text string) string {
	t.Helper()
	return WritePDF(t, "one.pdf", [][]PlacedText{
		{{Text: text, X: 72, Y: 720}},
	})
}

// TableGrid places a rows x cols grid of cell texts on one page,
// aligned so the geometric detectors can find it. Cell [r][c] is
// placed at x = 72 + c*120, y = 700 - r*24.
func TableGrid(cells [][]string) []PlacedText {
	var placed []PlacedText
	for r, row := range cells {
		for c, text := range row {
			if text == "" {
				continue
			}
			placed = append(placed, PlacedText{
				Text: text,
				X:    72 + float64(c)*120,
				Y:    700 - float64(r)*24,
			})
		}
	}
	return placed
}
