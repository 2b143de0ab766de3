package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/capability"
	"github.com/jackzampolin/flatbed/internal/cli"
	"github.com/jackzampolin/flatbed/internal/extract"
)

// probeReport is the availability report rendered by the probe command.
type probeReport struct {
	AdvancedTables bool     `json:"advanced_tables" yaml:"advanced_tables"`
	OCRPrimary     bool     `json:"ocr_primary" yaml:"ocr_primary"`
	OCRFallback    bool     `json:"ocr_fallback" yaml:"ocr_fallback"`
	Strategies     []string `json:"strategies" yaml:"strategies"`
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report which optional extraction backends are usable",
	Long: `Probe the optional extraction backends and report the resulting
strategy chain.

A missing backend disables its strategies rather than failing
conversion; this command shows what the chain looks like on this
machine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		avail := capability.Probe(
			capability.DefaultChecks(cfg.RenderBinary(), cfg.TesseractBinary()), logger,
		)
		return cli.Output(buildProbeReport(avail))
	},
}

// buildProbeReport lists the active strategies in chain order.
func buildProbeReport(avail capability.Availability) probeReport {
	report := probeReport{
		AdvancedTables: avail.AdvancedTables,
		OCRPrimary:     avail.OCRPrimary,
		OCRFallback:    avail.OCRFallback,
	}

	if avail.AdvancedTables {
		report.Strategies = append(report.Strategies,
			string(extract.StrategyLattice), string(extract.StrategyStream))
	}
	report.Strategies = append(report.Strategies,
		string(extract.StrategyNative), string(extract.StrategyText))
	if avail.OCRPrimary {
		report.Strategies = append(report.Strategies, string(extract.StrategyOCRPrimary))
	}
	if avail.OCRFallback {
		report.Strategies = append(report.Strategies, string(extract.StrategyOCRFallback))
	}
	return report
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
