package tables

import (
	"fmt"
	"testing"
)

// gridFragments builds an aligned rows x cols word grid with abutting
// 12 point rows starting at the given top baseline.
func gridFragments(rows, cols int, topY float64) []Fragment {
	var words []Fragment
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			words = append(words, Fragment{
				Text: fmt.Sprintf("r%dc%d", r, c),
				X:    72 + float64(c)*120,
				Y:    topY - float64(r)*12,
				W:    24,
				H:    12,
			})
		}
	}
	return words
}

func TestNativeDetector_DetectsGrid(t *testing.T) {
	d := NewNativeDetector(DefaultConfig())

	tables := d.Detect(gridFragments(3, 3, 700))
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	tab := tables[0]
	if tab.Method != "native" {
		t.Errorf("method = %q, want native", tab.Method)
	}
	if tab.Confidence < 0.5 {
		t.Errorf("confidence = %v, want >= 0.5", tab.Confidence)
	}
	if tab.RowCount() != 3 || tab.ColCount() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3: %v", tab.RowCount(), tab.ColCount(), tab.Rows)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := fmt.Sprintf("r%dc%d", r, c)
			if got := tab.Rows[r][c]; got != want {
				t.Errorf("cell[%d][%d] = %q, want %q", r, c, got, want)
			}
		}
	}
}

func TestNativeDetector_RejectsProse(t *testing.T) {
	// Three ragged lines: only the left margin repeats across lines,
	// so no column structure should survive.
	var words []Fragment
	addLine := func(y float64, w float64, xs ...float64) {
		for i, x := range xs {
			words = append(words, Fragment{
				Text: fmt.Sprintf("w%d", i),
				X:    x,
				Y:    y,
				W:    w,
				H:    12,
			})
		}
	}
	addLine(700, 9, 72, 144, 214, 284)
	addLine(688, 13, 72, 126, 196, 266)
	addLine(676, 26, 72, 133, 203, 273)

	d := NewNativeDetector(DefaultConfig())
	if tables := d.Detect(words); len(tables) != 0 {
		t.Errorf("got %d tables from prose, want 0: %+v", len(tables), tables)
	}
}

func TestNativeDetector_TooFewWords(t *testing.T) {
	d := NewNativeDetector(DefaultConfig())
	words := []Fragment{
		{Text: "a", X: 72, Y: 700, W: 10, H: 12},
		{Text: "b", X: 200, Y: 700, W: 10, H: 12},
	}
	if tables := d.Detect(words); len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestNativeDetector_MultipleClusters(t *testing.T) {
	words := gridFragments(3, 3, 700)
	words = append(words, gridFragments(3, 3, 300)...)

	d := NewNativeDetector(DefaultConfig())
	tables := d.Detect(words)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].BBox.Y1 <= tables[1].BBox.Y1 {
		t.Errorf("tables out of page order: %v then %v", tables[0].BBox, tables[1].BBox)
	}
}

func TestNativeDetector_Empty(t *testing.T) {
	d := NewNativeDetector(DefaultConfig())
	if tables := d.Detect(nil); tables != nil {
		t.Errorf("got %v, want nil", tables)
	}
}
