package tables

import (
	"math"
	"sort"
)

// minStreamLines is the smallest cluster the stream detector will
// consider tabular.
const minStreamLines = 3

// StreamDetector finds tables in digital text by locating column start
// positions shared across at least half of a cluster's lines. It is
// deliberately permissive: multi-column text reads as a table, matching
// the behavior of whitespace-based extractors.
type StreamDetector struct {
	cfg Config
}

// NewStreamDetector creates a stream detector.
func NewStreamDetector(cfg Config) *StreamDetector {
	return &StreamDetector{cfg: cfg}
}

// Name returns the detector's identifier.
func (d *StreamDetector) Name() string { return "stream" }

// Detect returns the tables found among the page's word fragments, top
// of page first.
func (d *StreamDetector) Detect(words []Fragment) []Table {
	var tables []Table
	for _, cluster := range clusterByGap(words, d.cfg.LineGap) {
		if t := d.detectInCluster(cluster); t != nil {
			tables = append(tables, *t)
		}
	}
	return tables
}

func (d *StreamDetector) detectInCluster(words []Fragment) *Table {
	lines := GroupLines(words)
	if len(lines) < minStreamLines {
		return nil
	}

	columns := d.alignedColumns(lines)
	if len(columns) < d.cfg.MinCols {
		return nil
	}

	rows := make([][]string, len(lines))
	filled := 0
	bbox := Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for i, line := range lines {
		rows[i] = make([]string, len(columns))
		for _, w := range line.Words {
			c := columnIndex(w.X, columns, d.cfg.AlignmentTolerance)
			if c < 0 {
				continue
			}
			if rows[i][c] != "" {
				rows[i][c] += " "
			}
			rows[i][c] += w.Text
			bbox.X0 = math.Min(bbox.X0, w.X)
			bbox.Y0 = math.Min(bbox.Y0, w.Y)
			bbox.X1 = math.Max(bbox.X1, w.Right())
			bbox.Y1 = math.Max(bbox.Y1, w.Top())
		}
		for _, cell := range rows[i] {
			if cell != "" {
				filled++
			}
		}
	}

	return &Table{
		Rows:       rows,
		BBox:       bbox,
		Confidence: float64(filled) / float64(len(rows)*len(columns)),
		Method:     "stream",
	}
}

// alignedColumns returns the X positions where words start in at least
// half of the lines, snapped to the alignment tolerance. Each line
// contributes a position at most once.
func (d *StreamDetector) alignedColumns(lines []Line) []float64 {
	counts := make(map[float64]int)
	for _, line := range lines {
		seen := make(map[float64]bool)
		for _, w := range line.Words {
			x := math.Round(w.X/d.cfg.AlignmentTolerance) * d.cfg.AlignmentTolerance
			if seen[x] {
				continue
			}
			seen[x] = true
			counts[x]++
		}
	}

	minCount := len(lines) / 2
	if minCount < 2 {
		minCount = 2
	}

	var columns []float64
	for x, n := range counts {
		if n >= minCount {
			columns = append(columns, x)
		}
	}
	sort.Float64s(columns)
	return columns
}

// columnIndex finds the column whose span contains x. Positions up to
// tolerance left of the first matching column still count; snapping
// rounds to the nearest grid point, not down.
func columnIndex(x float64, columns []float64, tolerance float64) int {
	for i := 0; i < len(columns)-1; i++ {
		if x >= columns[i]-tolerance && x < columns[i+1]-tolerance {
			return i
		}
	}
	if len(columns) > 0 && x >= columns[len(columns)-1]-tolerance {
		return len(columns) - 1
	}
	return -1
}
