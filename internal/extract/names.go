package extract

import (
	"fmt"
	"strconv"

	"github.com/jackzampolin/flatbed/internal/tables"
)

// Placeholder fills the text sheet of a page that yielded nothing.
const Placeholder = "[No content extracted]"

// Sheet names carry the page number and, for tables, a 1-based index
// within the page. Advanced detections (lattice, stream) and native
// geometry detections are named apart so the workbook shows which
// family found each table.

func gridSheet(page, idx int) string  { return fmt.Sprintf("p%d_grid_t%d", page, idx) }
func tableSheet(page, idx int) string { return fmt.Sprintf("p%d_table_t%d", page, idx) }
func textSheet(page int) string       { return fmt.Sprintf("p%d_text", page) }
func errorSheet(page int) string      { return fmt.Sprintf("p%d_error", page) }

func tableBlock(page, idx int, strategy Strategy, t tables.Table) ResultBlock {
	name := tableSheet(page, idx)
	if strategy == StrategyLattice || strategy == StrategyStream {
		name = gridSheet(page, idx)
	}
	return ResultBlock{Name: name, Rows: t.Rows, Strategy: strategy, Page: page}
}

// textBlock is the text sheet for a page that also produced tables.
func textBlock(page int, text string, strategy Strategy) ResultBlock {
	return ResultBlock{
		Name:     textSheet(page),
		Rows:     [][]string{{"page", "text"}, {strconv.Itoa(page), text}},
		Strategy: strategy,
		Page:     page,
	}
}

// contentBlock is the text sheet for a page without tables. Empty text
// becomes the placeholder marker.
func contentBlock(page int, text string, strategy Strategy) ResultBlock {
	if text == "" {
		text = Placeholder
		strategy = StrategyNone
	}
	return ResultBlock{
		Name:     textSheet(page),
		Rows:     [][]string{{"page", "content"}, {strconv.Itoa(page), text}},
		Strategy: strategy,
		Page:     page,
	}
}

// ErrorOutcome wraps a page failure as that page's single error block.
// The scheduler uses it for recovered worker panics.
func ErrorOutcome(page int, err error) Outcome {
	block := ResultBlock{
		Name:     errorSheet(page),
		Rows:     [][]string{{"page", "error"}, {strconv.Itoa(page), err.Error()}},
		Strategy: StrategyError,
		Page:     page,
	}
	return Outcome{Page: page, Blocks: []ResultBlock{block}}
}
