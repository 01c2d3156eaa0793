package main

import (
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:          "dshist",
	Short:        "dshist - Versioned dataset history",
	Long:         "dshist keeps every edit of a dataset as a version and shows how the versions chain together.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the history database (defaults to the data directory)")

	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newTransformCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newMCPCmd())
}
