package tables

import (
	"math"
	"sort"
)

// NativeDetector finds tables from text fragment geometry alone, with
// no rendered image and no ruling lines. Fragment edges are clustered
// into candidate row and column boundaries and the resulting grid is
// scored for regularity, alignment and occupancy. Column boundaries
// must be shared by at least half of the lines in a cluster, which
// keeps running prose from reading as a one-column grid.
type NativeDetector struct {
	cfg Config
}

// NewNativeDetector creates a native detector.
func NewNativeDetector(cfg Config) *NativeDetector {
	return &NativeDetector{cfg: cfg}
}

// Name returns the detector's identifier.
func (d *NativeDetector) Name() string { return "native" }

// Detect returns the tables found among the page's word fragments, top
// of page first.
func (d *NativeDetector) Detect(words []Fragment) []Table {
	var tables []Table
	for _, cluster := range clusterByGap(words, d.cfg.LineGap) {
		if t := d.detectInCluster(cluster); t != nil {
			tables = append(tables, *t)
		}
	}
	return tables
}

func (d *NativeDetector) detectInCluster(words []Fragment) *Table {
	if len(words) < d.cfg.MinRows*d.cfg.MinCols {
		return nil
	}

	lines := GroupLines(words)
	if len(lines) < d.cfg.MinRows {
		return nil
	}

	rowBounds := d.rowBoundaries(lines)
	colBounds := d.colBoundaries(lines)
	if len(rowBounds) < d.cfg.MinRows+1 || len(colBounds) < d.cfg.MinCols+1 {
		return nil
	}

	confidence := d.score(words, rowBounds, colBounds)
	if confidence < d.cfg.MinConfidence {
		return nil
	}

	cells := pruneEmpty(fillCells(rowBounds, colBounds, words))
	if len(cells) < d.cfg.MinRows || len(cells[0]) < d.cfg.MinCols {
		return nil
	}

	return &Table{
		Rows: cells,
		BBox: Rect{
			X0: colBounds[0],
			Y0: rowBounds[len(rowBounds)-1],
			X1: colBounds[len(colBounds)-1],
			Y1: rowBounds[0],
		},
		Confidence: confidence,
		Method:     "native",
	}
}

// rowBoundaries clusters line tops and bottoms into row boundaries,
// top first.
func (d *NativeDetector) rowBoundaries(lines []Line) []float64 {
	ys := make([]float64, 0, len(lines)*2)
	for _, line := range lines {
		bottom, top := line.Words[0].Y, line.Words[0].Top()
		for _, w := range line.Words[1:] {
			bottom = math.Min(bottom, w.Y)
			top = math.Max(top, w.Top())
		}
		ys = append(ys, bottom, top)
	}
	sort.Float64s(ys)
	bounds := clusterValues(ys, d.cfg.AlignmentTolerance)
	sortFloatsDesc(bounds)
	return bounds
}

// colBoundaries clusters fragment left and right edges into column
// boundaries, keeping only positions shared by at least half of the
// lines. The cluster's outer edges are always included.
func (d *NativeDetector) colBoundaries(lines []Line) []float64 {
	minSupport := len(lines) / 2
	if minSupport < 2 {
		minSupport = 2
	}

	type edge struct {
		pos  float64
		line int
	}
	var edges []edge
	outerLeft, outerRight := math.Inf(1), math.Inf(-1)
	for i, line := range lines {
		for _, w := range line.Words {
			edges = append(edges, edge{w.X, i}, edge{w.Right(), i})
			outerLeft = math.Min(outerLeft, w.X)
			outerRight = math.Max(outerRight, w.Right())
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].pos < edges[j].pos })

	var supported []float64
	start := 0
	for i := 1; i <= len(edges); i++ {
		if i < len(edges) && edges[i].pos-edges[i-1].pos <= d.cfg.AlignmentTolerance {
			continue
		}
		cluster := edges[start:i]
		seen := make(map[int]bool)
		sum := 0.0
		for _, e := range cluster {
			seen[e.line] = true
			sum += e.pos
		}
		if len(seen) >= minSupport {
			supported = append(supported, sum/float64(len(cluster)))
		}
		start = i
	}

	supported = append(supported, outerLeft, outerRight)
	sort.Float64s(supported)
	return clusterValues(supported, d.cfg.AlignmentTolerance)
}

// score combines grid regularity, fragment alignment and cell
// occupancy into a confidence value. The factors top out at 0.8; the
// remaining weight belongs to visible ruling lines, which this
// detector never sees.
func (d *NativeDetector) score(words []Fragment, rowBounds, colBounds []float64) float64 {
	return 0.3*d.regularity(rowBounds, colBounds) +
		0.3*d.alignment(words, rowBounds, colBounds) +
		0.2*d.occupancy(words, rowBounds, colBounds)
}

// regularity measures the coefficient of variation of row heights and
// column widths. Lower variance scores higher.
func (d *NativeDetector) regularity(rowBounds, colBounds []float64) float64 {
	heights := make([]float64, len(rowBounds)-1)
	for i := range heights {
		heights[i] = rowBounds[i] - rowBounds[i+1]
	}
	widths := make([]float64, len(colBounds)-1)
	for i := range widths {
		widths[i] = colBounds[i+1] - colBounds[i]
	}

	rowCV := math.Sqrt(variance(heights)) / mean(heights)
	colCV := math.Sqrt(variance(widths)) / mean(widths)

	return (math.Max(0, 1-rowCV) + math.Max(0, 1-colCV)) / 2
}

// alignment is the fraction of fragments with at least three of their
// four edges on a grid boundary. Row boundaries derive from baselines,
// so two edges align for free; three is the signal.
func (d *NativeDetector) alignment(words []Fragment, rowBounds, colBounds []float64) float64 {
	if len(words) == 0 {
		return 0
	}
	tolerance := d.cfg.AlignmentTolerance * 2
	aligned := 0
	for _, w := range words {
		edges := 0
		if nearBoundary(w.X, colBounds, tolerance) {
			edges++
		}
		if nearBoundary(w.Right(), colBounds, tolerance) {
			edges++
		}
		if nearBoundary(w.Y, rowBounds, tolerance) {
			edges++
		}
		if nearBoundary(w.Top(), rowBounds, tolerance) {
			edges++
		}
		if edges >= 3 {
			aligned++
		}
	}
	return float64(aligned) / float64(len(words))
}

func nearBoundary(v float64, bounds []float64, tolerance float64) bool {
	for _, b := range bounds {
		if math.Abs(v-b) < tolerance {
			return true
		}
	}
	return false
}

// occupancy is the fraction of grid cells containing at least one
// fragment.
func (d *NativeDetector) occupancy(words []Fragment, rowBounds, colBounds []float64) float64 {
	occupied := make(map[[2]int]bool)
	for _, w := range words {
		r, c := findCell(w.CenterX(), w.CenterY(), rowBounds, colBounds)
		if r >= 0 && c >= 0 {
			occupied[[2]int{r, c}] = true
		}
	}
	total := (len(rowBounds) - 1) * (len(colBounds) - 1)
	if total == 0 {
		return 0
	}
	return float64(len(occupied)) / float64(total)
}
