package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"solana-pop/internal/claims"
	"solana-pop/internal/config"
	"solana-pop/internal/logging"
	"solana-pop/internal/reporting"
	"solana-pop/internal/solana/stub"
)

var (
	reportEventID string
	reportFormat  string
	reportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an event's attendance report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFormat != "csv" && reportFormat != "md" {
			return fmt.Errorf("--format must be csv or md, got %q", reportFormat)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, err := openStorage(ctx, cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		activity, closeActivity, err := openActivity(ctx, cfg.Analytics, logger)
		if err != nil {
			return err
		}
		defer closeActivity()

		svc := claims.NewService(store, activity, stub.NewMinter(), claims.WithLogger(logger))
		report, err := reporting.NewGenerator(svc).Generate(ctx, reportEventID)
		if err != nil {
			return fmt.Errorf("generate report for event %s: %w", reportEventID, err)
		}

		out := cmd.OutOrStdout()
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		return writeReport(out, report, reportFormat)
	},
}

func writeReport(w io.Writer, r *reporting.Report, format string) error {
	if format == "md" {
		_, err := io.WriteString(w, reporting.RenderMarkdown(r))
		return err
	}
	return reporting.WriteCSV(w, r)
}

func init() {
	reportCmd.Flags().StringVar(&reportEventID, "event", "", "event ID")
	reportCmd.Flags().StringVar(&reportFormat, "format", "csv", "output format: csv or md")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default: stdout)")
	_ = reportCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(reportCmd)
}
