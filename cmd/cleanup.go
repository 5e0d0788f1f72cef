package cmd

import (
	"context"
	"fmt"

	"github.com/jmehdipour/dialer/internal/config"
	"github.com/jmehdipour/dialer/internal/logger"
	"github.com/jmehdipour/dialer/internal/telephony"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Rewrite stored call-log error messages through the error cleaner",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("open call log store: %w", err)
		}
		defer closeStore()

		count, err := store.Cleanup(context.Background(), telephony.CleanError)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}

		fmt.Printf(">> Cleaned up %d log entries\n", count)
		return nil
	},
}
