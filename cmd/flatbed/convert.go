package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/config"
	"github.com/jackzampolin/flatbed/internal/convert"
	"github.com/jackzampolin/flatbed/internal/profile"
)

var (
	convertOut     string
	convertProfile string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.pdf>",
	Short: "Convert a PDF document into an xlsx workbook",
	Long: `Convert a PDF document into an xlsx workbook.

The input must carry a .pdf extension and stay under the configured
size ceiling. Output goes to -o when given, otherwise to the input
name with the extension swapped for .xlsx.

Examples:
  flatbed convert statement.pdf
  flatbed convert statement.pdf -o out/statement.xlsx
  flatbed convert scan.pdf --profile profiles/invoices.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		path := args[0]
		if err := validateInput(path, cfg); err != nil {
			return err
		}

		if convertProfile != "" {
			p, err := profile.Load(convertProfile)
			if err != nil {
				return err
			}
			p.Apply(cfg)
			logger.Info("applied extraction profile", "profile", p.Name)
		}

		recorder := openRecorder(logger)
		if recorder != nil {
			defer recorder.Close()
		}

		conv := convert.New(cfg, logger, recorder)
		res, err := conv.Convert(ctx, path, filepath.Base(path))
		if err != nil {
			return err
		}

		out := convertOut
		if out == "" {
			out = res.SuggestedFilename
		}
		if err := os.WriteFile(out, res.WorkbookBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}

		fmt.Printf("wrote %s (%d pages, %d sheets)\n", out, res.Metrics.Pages, res.Metrics.Sheets)
		return nil
	},
}

// validateInput applies the collaborator-side checks that the core
// deliberately does not repeat: the extension gate and the size
// ceiling.
func validateInput(path string, cfg *config.Config) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("input must be a .pdf file: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input is a directory: %s", path)
	}
	if max := cfg.MaxInputBytes(); max > 0 && info.Size() > max {
		return fmt.Errorf("input exceeds the %dMB size limit", cfg.Limits.MaxInputMB)
	}
	return nil
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output xlsx path (default: input name with .xlsx)")
	convertCmd.Flags().StringVar(&convertProfile, "profile", "", "extraction profile JSON overriding detector tunables")

	rootCmd.AddCommand(convertCmd)
}
