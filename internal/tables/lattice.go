package tables

import (
	"image"
	"math"
	"sort"
)

const (
	// inkThreshold is the grayscale cutoff below which a pixel counts
	// as ink when scanning for ruling lines.
	inkThreshold = 160

	// lineScale divides the page dimension to get the minimum ruling
	// line length in pixels. Shorter dark runs are text, not rules.
	lineScale = 15
)

// LatticeDetector finds ruled tables on rendered page images. Dark
// pixel runs are merged into horizontal and vertical ruling lines,
// crossing rulings are connected into grids, and cell text is filled
// from the page's word fragments, which stay in PDF user space.
type LatticeDetector struct {
	cfg Config
}

// NewLatticeDetector creates a lattice detector.
func NewLatticeDetector(cfg Config) *LatticeDetector {
	return &LatticeDetector{cfg: cfg}
}

// Name returns the detector's identifier.
func (d *LatticeDetector) Name() string { return "lattice" }

// Detect scans a rendered page for ruled grids. dpi relates image
// pixels to PDF points. Cells of a grid with no overlapping text stay
// empty; a ruled frame on a scanned page is still a table.
func (d *LatticeDetector) Detect(img *image.Gray, dpi int, words []Fragment) []Table {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || dpi <= 0 {
		return nil
	}
	scale := float64(dpi) / 72.0

	hs := mergeRuns(scanHorizontal(img, minRunLen(b.Dx())))
	vs := mergeRuns(scanVertical(img, minRunLen(b.Dy())))
	if len(hs) < d.cfg.MinRows+1 || len(vs) < d.cfg.MinCols+1 {
		return nil
	}

	snap := d.cfg.AlignmentTolerance * scale
	var tables []Table
	for _, g := range connectGrids(hs, vs, snap*2) {
		if t := d.tableFromGrid(g, scale, float64(b.Dy()), snap, words); t != nil {
			tables = append(tables, *t)
		}
	}
	return tables
}

// pixelRun is a run of ink along one scanline.
type pixelRun struct {
	pos    int // scanline index
	lo, hi int // run extent along the scanline
}

// ruling is a merged physical line: rendered rules are several pixels
// thick, so adjacent runs collapse into one.
type ruling struct {
	pos    float64
	lo, hi float64
}

// gridLines is one connected set of crossing rulings.
type gridLines struct {
	hs []ruling
	vs []ruling
}

func minRunLen(dim int) int {
	n := dim / lineScale
	if n < 10 {
		n = 10
	}
	return n
}

// scanHorizontal collects ink runs at least minLen pixels long on each
// pixel row.
func scanHorizontal(img *image.Gray, minLen int) []pixelRun {
	b := img.Bounds()
	var runs []pixelRun
	for y := 0; y < b.Dy(); y++ {
		start := -1
		for x := 0; x <= b.Dx(); x++ {
			dark := x < b.Dx() && img.GrayAt(b.Min.X+x, b.Min.Y+y).Y < inkThreshold
			if dark {
				if start < 0 {
					start = x
				}
				continue
			}
			if start >= 0 && x-start >= minLen {
				runs = append(runs, pixelRun{pos: y, lo: start, hi: x - 1})
			}
			start = -1
		}
	}
	return runs
}

// scanVertical collects ink runs at least minLen pixels long in each
// pixel column.
func scanVertical(img *image.Gray, minLen int) []pixelRun {
	b := img.Bounds()
	var runs []pixelRun
	for x := 0; x < b.Dx(); x++ {
		start := -1
		for y := 0; y <= b.Dy(); y++ {
			dark := y < b.Dy() && img.GrayAt(b.Min.X+x, b.Min.Y+y).Y < inkThreshold
			if dark {
				if start < 0 {
					start = y
				}
				continue
			}
			if start >= 0 && y-start >= minLen {
				runs = append(runs, pixelRun{pos: x, lo: start, hi: y - 1})
			}
			start = -1
		}
	}
	return runs
}

// mergeRuns collapses runs on adjacent scanlines with overlapping
// extents into single rulings.
func mergeRuns(runs []pixelRun) []ruling {
	if len(runs) == 0 {
		return nil
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].pos != runs[j].pos {
			return runs[i].pos < runs[j].pos
		}
		return runs[i].lo < runs[j].lo
	})

	type group struct {
		posSum float64
		n      int
		last   int
		lo, hi int
	}
	var groups []*group

	for _, r := range runs {
		var g *group
		for _, cand := range groups {
			if r.pos-cand.last <= 2 && r.lo <= cand.hi && r.hi >= cand.lo {
				g = cand
				break
			}
		}
		if g == nil {
			groups = append(groups, &group{posSum: float64(r.pos), n: 1, last: r.pos, lo: r.lo, hi: r.hi})
			continue
		}
		g.posSum += float64(r.pos)
		g.n++
		g.last = r.pos
		if r.lo < g.lo {
			g.lo = r.lo
		}
		if r.hi > g.hi {
			g.hi = r.hi
		}
	}

	rulings := make([]ruling, 0, len(groups))
	for _, g := range groups {
		rulings = append(rulings, ruling{
			pos: g.posSum / float64(g.n),
			lo:  float64(g.lo),
			hi:  float64(g.hi),
		})
	}
	sort.Slice(rulings, func(i, j int) bool { return rulings[i].pos < rulings[j].pos })
	return rulings
}

// connectGrids groups rulings into connected components. A horizontal
// and a vertical ruling connect when they cross within tol pixels.
// Components are returned top of page first.
func connectGrids(hs, vs []ruling, tol float64) []gridLines {
	n := len(hs) + len(vs)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		parent[find(a)] = find(b)
	}

	for i, h := range hs {
		for j, v := range vs {
			if crosses(h, v, tol) {
				union(i, len(hs)+j)
			}
		}
	}

	byRoot := make(map[int]*gridLines)
	var order []int
	for i, h := range hs {
		root := find(i)
		g, ok := byRoot[root]
		if !ok {
			g = &gridLines{}
			byRoot[root] = g
			order = append(order, root)
		}
		g.hs = append(g.hs, h)
	}
	for j, v := range vs {
		root := find(len(hs) + j)
		if g, ok := byRoot[root]; ok {
			g.vs = append(g.vs, v)
		}
	}

	// hs are sorted by position, so components come out top-down
	var grids []gridLines
	for _, root := range order {
		g := byRoot[root]
		if len(g.hs) > 0 && len(g.vs) > 0 {
			grids = append(grids, *g)
		}
	}
	return grids
}

func crosses(h, v ruling, tol float64) bool {
	return v.pos >= h.lo-tol && v.pos <= h.hi+tol &&
		h.pos >= v.lo-tol && h.pos <= v.hi+tol
}

// tableFromGrid converts a connected grid into a table, mapping pixel
// boundaries back to PDF points with the vertical axis flipped.
func (d *LatticeDetector) tableFromGrid(g gridLines, scale, imgHeight, snap float64, words []Fragment) *Table {
	hPos := uniquePositions(g.hs, snap)
	vPos := uniquePositions(g.vs, snap)
	if len(hPos) < d.cfg.MinRows+1 || len(vPos) < d.cfg.MinCols+1 {
		return nil
	}

	// hPos ascends down the image, so the flipped bounds descend as
	// fillCells expects.
	rowBounds := make([]float64, len(hPos))
	for i, p := range hPos {
		rowBounds[i] = (imgHeight - p) / scale
	}
	colBounds := make([]float64, len(vPos))
	for i, p := range vPos {
		colBounds[i] = p / scale
	}

	cells := fillCells(rowBounds, colBounds, words)
	filled := 0
	for _, row := range cells {
		for _, c := range row {
			if c != "" {
				filled++
			}
		}
	}

	return &Table{
		Rows: cells,
		BBox: Rect{
			X0: colBounds[0],
			Y0: rowBounds[len(rowBounds)-1],
			X1: colBounds[len(colBounds)-1],
			Y1: rowBounds[0],
		},
		Confidence: float64(filled) / float64(len(cells)*len(cells[0])),
		Method:     "lattice",
	}
}

// uniquePositions snaps ruling positions to the snap grid and returns
// them sorted ascending.
func uniquePositions(rulings []ruling, snap float64) []float64 {
	if snap <= 0 {
		snap = 1
	}
	set := make(map[float64]bool)
	for _, r := range rulings {
		set[math.Round(r.pos/snap)*snap] = true
	}
	positions := make([]float64, 0, len(set))
	for p := range set {
		positions = append(positions, p)
	}
	sort.Float64s(positions)
	return positions
}
