// Package workbook assembles extraction outcomes into an xlsx file.
//
// Each result block becomes one worksheet. Assembly is
// failure-tolerant: a sheet that cannot be written is logged and
// skipped so one bad block never loses the rest of the document.
package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/flatbed/internal/extract"
)

// maxSheetName is the xlsx format's sheet name length limit.
const maxSheetName = 31

// defaultSheet is the sheet excelize seeds a new file with. It is
// removed once a content sheet exists, and kept otherwise so an empty
// conversion still yields a workbook that opens.
const defaultSheet = "Sheet1"

// Assemble flattens outcomes into an in-memory workbook. Outcomes are
// written in the order given, blocks in within-page order.
func Assemble(outcomes []extract.Outcome, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	wrote := 0
	for _, outcome := range outcomes {
		for _, block := range outcome.Blocks {
			name := safeName(block.Name, used)
			if err := writeSheet(f, name, block.Rows); err != nil {
				logger.Warn("failed to write sheet", "sheet", name, "error", err)
				continue
			}
			used[strings.ToLower(name)] = true
			wrote++
		}
	}

	if wrote > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			logger.Debug("failed to remove default sheet", "error", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetSheetRow(name, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

// safeName fits a block name into the sheet name limit. On collision a
// numeric suffix is added before truncating, so the disambiguator
// always survives. Comparison is case-insensitive, as the xlsx format
// requires.
func safeName(name string, used map[string]bool) string {
	candidate := truncate(name, maxSheetName)
	if !used[strings.ToLower(candidate)] {
		return candidate
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf("_%d", i)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
		if !used[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
