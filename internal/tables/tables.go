// Package tables detects tabular structures on PDF pages. Three
// detectors are provided: lattice finds ruled grids on rendered page
// images, stream finds whitespace-aligned columns in digital text, and
// native scores text fragment geometry for grid structure. All
// coordinates are PDF user space (origin bottom-left, Y up) unless a
// detector says otherwise.
package tables

// Rect is an axis-aligned box in PDF user space.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Table is one detected table.
type Table struct {
	// Rows holds cell text in reading order, top row first.
	Rows [][]string

	// BBox is the table's bounding box on the page.
	BBox Rect

	// Confidence is the detector's score in [0, 1].
	Confidence float64

	// Method names the detector that produced the table.
	Method string
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColCount returns the number of columns in the widest row.
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Config holds shared detector tuning.
type Config struct {
	// AlignmentTolerance is the snap distance in points for row and
	// column boundaries.
	AlignmentTolerance float64

	// LineGap is the vertical gap in points that separates content
	// clusters. Fragments further apart belong to different tables.
	LineGap float64

	// MinRows and MinCols reject degenerate grids.
	MinRows int
	MinCols int

	// MinConfidence rejects low scoring grids found by the native
	// detector.
	MinConfidence float64
}

// DefaultConfig returns the standard detector tuning.
func DefaultConfig() Config {
	return Config{
		AlignmentTolerance: 3.0,
		LineGap:            50.0,
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
	}
}
