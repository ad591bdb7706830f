package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
)

var rootCmd = &cobra.Command{
	Use:   "popd",
	Short: "popd issues proof-of-participation tokens for events",
	Long: `popd stores events and token claims and serves them over HTTP.

Configuration comes from defaults, an optional popd.yaml (./ or /etc/popd),
and POP_* environment variables, e.g. POP_STORAGE_BACKEND=postgres.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: popd.yaml in . or /etc/popd)")
}
