package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thereayou/lecture-live/internal/config"
	"github.com/thereayou/lecture-live/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema auto-migration and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if _, err := database.Connect(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("migration complete")
	return nil
}
