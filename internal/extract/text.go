package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jackzampolin/flatbed/internal/tables"
)

// assembleText rebuilds the page text from positioned words in reading
// order, one output line per visual line.
func assembleText(words []tables.Fragment) string {
	lines := tables.GroupLines(words)
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, w := range line.Words {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(w.Text)
		}
	}
	return normalizeText(b.String())
}

// normalizeText brings extracted text to NFC and trims surrounding
// whitespace. PDF text layers and OCR output both produce decomposed
// sequences for accented characters.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
