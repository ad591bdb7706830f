package main

import (
	"github.com/spf13/cobra"

	"solana-pop/internal/config"
	"solana-pop/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the configured storage and analytics backends, then exit",
	Long: `migrate applies the embedded PostgreSQL or ClickHouse migrations and creates
CouchDB databases and indexes. serve does the same on startup; migrate lets a
deploy step run it ahead of time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if err != nil {
			return err
		}

		store, err := openStorage(cmd.Context(), cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		_, closeActivity, err := openActivity(cmd.Context(), cfg.Analytics, logger)
		if err != nil {
			return err
		}
		closeActivity()

		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
