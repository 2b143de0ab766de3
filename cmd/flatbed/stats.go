package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/cli"
	"github.com/jackzampolin/flatbed/internal/home"
	"github.com/jackzampolin/flatbed/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate conversion metrics",
	Long: `Show aggregate metrics over recorded conversion runs: run and page
counts, sheet and table totals, strategy hit counts, and the average
conversion duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		rec, err := metrics.Open(h.MetricsPath())
		if err != nil {
			return fmt.Errorf("failed to open metrics store: %w", err)
		}
		defer rec.Close()

		summary, err := rec.Summarize(cmd.Context())
		if err != nil {
			return err
		}
		return cli.Output(summary)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
