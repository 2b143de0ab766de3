package tables

import "sort"

// clusterValues merges ascending values that fall within tolerance of
// the running cluster center, averaging each cluster.
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	clustered := []float64{values[0]}
	for _, v := range values[1:] {
		last := len(clustered) - 1
		if v-clustered[last] > tolerance {
			clustered = append(clustered, v)
			continue
		}
		clustered[last] = (clustered[last] + v) / 2
	}
	return clustered
}

// fillCells assigns fragments to grid cells by center point and joins
// cell text with spaces. Row boundaries are top-down (descending Y),
// column boundaries left to right. Fragments are expected in reading
// order so in-cell concatenation stays readable.
func fillCells(rowBounds, colBounds []float64, words []Fragment) [][]string {
	cells := make([][]string, len(rowBounds)-1)
	for i := range cells {
		cells[i] = make([]string, len(colBounds)-1)
	}
	for _, w := range words {
		r, c := findCell(w.CenterX(), w.CenterY(), rowBounds, colBounds)
		if r < 0 || c < 0 {
			continue
		}
		if cells[r][c] != "" {
			cells[r][c] += " "
		}
		cells[r][c] += w.Text
	}
	return cells
}

// findCell returns the row and column containing the point, or -1 for
// either index when the point lies outside the grid.
func findCell(x, y float64, rowBounds, colBounds []float64) (row, col int) {
	row, col = -1, -1
	for i := 0; i < len(rowBounds)-1; i++ {
		if y <= rowBounds[i] && y >= rowBounds[i+1] {
			row = i
			break
		}
	}
	for i := 0; i < len(colBounds)-1; i++ {
		if x >= colBounds[i] && x <= colBounds[i+1] {
			col = i
			break
		}
	}
	return row, col
}

// pruneEmpty drops rows and columns whose cells are all empty. Boundary
// clustering over-segments sparse grids, leaving hollow slots between
// the real rows and columns.
func pruneEmpty(cells [][]string) [][]string {
	var rows [][]string
	for _, row := range cells {
		for _, c := range row {
			if c != "" {
				rows = append(rows, row)
				break
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}

	keep := make([]bool, len(rows[0]))
	kept := 0
	for _, row := range rows {
		for i, c := range row {
			if i < len(keep) && c != "" && !keep[i] {
				keep[i] = true
				kept++
			}
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, 0, kept)
		for j, c := range row {
			if j < len(keep) && keep[j] {
				out[i] = append(out[i], c)
			}
		}
	}
	return out
}

// sortFloatsDesc sorts values top-down for use as row boundaries.
func sortFloatsDesc(values []float64) {
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
}

// mean computes the arithmetic mean.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance computes the population variance.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values))
}
