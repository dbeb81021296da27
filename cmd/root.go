package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lecture-live",
	Short: "Lecture engagement backchannel: sessions, live messages, analytics",
	Long:  `HTTP + WebSocket API. Commands: api, migrate.`,
	RunE:  runAPI, // default: run API (same as "lecture-live api")
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
