package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ngiab-bench",
	Short:         "hydrologic simulation benchmark for NGIAB datasets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the benchmark matrix and print the summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := LoadConfig()
		report, err := NewSystem(cfg).Run(cmd.Context())
		if err != nil {
			return err
		}
		if err := WriteSummary(cfg.ResultsDir, os.Stdout); err != nil {
			Logger.Errorf("failed to generate summary: %v", err)
		}
		if failed := report.Count(CaseFailed); failed > 0 {
			return errors.Newf("%v of %v cases failed", failed, len(report.Outcomes))
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list discovered benchmark cases without running them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := LoadConfig()
		cases, skipped, err := DiscoverCases(cfg.BenchmarkDir)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Duration", "Operations", "Gage", "Archive"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, c := range cases {
			table.Append([]string{c.Duration, strconv.Itoa(c.Ops), c.Gage, c.Archive})
		}
		table.Render()
		if len(skipped) > 0 {
			Logger.Warnf("%v dataset directories have no archive", len(skipped))
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "regenerate the summary for an existing results tree",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := LoadConfig()
		return WriteSummary(cfg.ResultsDir, os.Stdout)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(runCmd, listCmd, summaryCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		Logger.Errorf("%v", err)
		os.Exit(1)
	}
}
