package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thereayou/lecture-live/internal/config"
	"github.com/thereayou/lecture-live/internal/server"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP + WebSocket API server",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	log, err := newLogger(cfg.GinMode)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return err
	}
	return srv.Run()
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
