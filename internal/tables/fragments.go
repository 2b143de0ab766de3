package tables

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/flatbed/internal/pdf"
)

const (
	// lineTolerance is the Y distance in points within which runs share
	// a baseline.
	lineTolerance = 3.0

	// wordGap is the X distance in points that separates two words on
	// the same baseline.
	wordGap = 3.0

	// estCharWidth estimates a glyph advance as a fraction of the font
	// size. Fonts without width tables report zero-width runs.
	estCharWidth = 0.5
)

// Fragment is a word of positioned text. Y is the text baseline and H
// approximates the line height as the font size.
type Fragment struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

// Right returns the fragment's right edge.
func (f Fragment) Right() float64 { return f.X + f.W }

// Top returns the fragment's top edge.
func (f Fragment) Top() float64 { return f.Y + f.H }

// CenterX returns the horizontal center.
func (f Fragment) CenterX() float64 { return f.X + f.W/2 }

// CenterY returns the vertical center.
func (f Fragment) CenterY() float64 { return f.Y + f.H/2 }

// Line is a group of fragments sharing a baseline, ordered left to
// right.
type Line struct {
	Y     float64
	Words []Fragment
}

// Words merges character-level text runs into word fragments. Runs are
// grouped by baseline first, then split into words on horizontal gaps
// wider than wordGap. The result is in reading order: top line first,
// left to right within a line.
func Words(runs []pdf.TextRun) []Fragment {
	chars := make([]pdf.TextRun, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if r.W <= 0 {
			r.W = estCharWidth * r.FontSize * float64(utf8.RuneCountInString(r.Text))
		}
		chars = append(chars, r)
	}
	if len(chars) == 0 {
		return nil
	}

	// Stable so that runs stacked at one position, as fonts without
	// width tables produce, keep content stream order.
	sort.SliceStable(chars, func(i, j int) bool {
		if chars[i].Y != chars[j].Y {
			return chars[i].Y > chars[j].Y
		}
		return chars[i].X < chars[j].X
	})

	var words []Fragment
	lineStart := 0
	for i := 1; i <= len(chars); i++ {
		if i < len(chars) && math.Abs(chars[i].Y-chars[lineStart].Y) < lineTolerance {
			continue
		}
		words = append(words, splitWords(chars[lineStart:i])...)
		lineStart = i
	}
	return words
}

// splitWords splits one baseline's characters into words. Explicit
// space runs and gaps wider than wordGap both terminate a word.
func splitWords(chars []pdf.TextRun) []Fragment {
	sorted := make([]pdf.TextRun, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var words []Fragment
	var cur Fragment
	open := false

	flush := func() {
		if open && cur.Text != "" {
			words = append(words, cur)
		}
		open = false
	}

	for _, c := range sorted {
		if strings.TrimSpace(c.Text) == "" {
			flush()
			continue
		}
		if open && c.X-cur.Right() > wordGap {
			flush()
		}
		if !open {
			cur = Fragment{Text: c.Text, X: c.X, Y: c.Y, W: c.W, H: c.FontSize}
			open = true
			continue
		}
		cur.Text += c.Text
		if right := c.X + c.W; right > cur.Right() {
			cur.W = right - cur.X
		}
		if c.Y < cur.Y {
			cur.Y = c.Y
		}
		if c.FontSize > cur.H {
			cur.H = c.FontSize
		}
	}
	flush()
	return words
}

// GroupLines clusters fragments by baseline, top of page first.
func GroupLines(words []Fragment) []Line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Fragment, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	cur := Line{Y: sorted[0].Y, Words: []Fragment{sorted[0]}}
	for _, w := range sorted[1:] {
		if math.Abs(w.Y-cur.Y) < lineTolerance {
			cur.Words = append(cur.Words, w)
			continue
		}
		lines = append(lines, finalizeLine(cur))
		cur = Line{Y: w.Y, Words: []Fragment{w}}
	}
	return append(lines, finalizeLine(cur))
}

func finalizeLine(l Line) Line {
	sort.SliceStable(l.Words, func(i, j int) bool { return l.Words[i].X < l.Words[j].X })
	return l
}

// clusterByGap splits fragments into vertical clusters separated by
// more than maxGap points, top of page first.
func clusterByGap(words []Fragment, maxGap float64) [][]Fragment {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Fragment, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var clusters [][]Fragment
	cur := []Fragment{sorted[0]}
	for _, w := range sorted[1:] {
		last := cur[len(cur)-1]
		if last.Y-w.Top() > maxGap {
			clusters = append(clusters, cur)
			cur = []Fragment{w}
			continue
		}
		cur = append(cur, w)
	}
	return append(clusters, cur)
}
