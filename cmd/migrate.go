package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmehdipour/dialer/internal/config"
	"github.com/jmehdipour/dialer/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the call_logs table (mysql store backend only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Store.Backend != "mysql" {
			return fmt.Errorf("store backend is %q; migrate only applies to mysql", cfg.Store.Backend)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.Store.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.Store.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Store.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.Store.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		sqlPath := filepath.Join("migrations", "001_init.sql")
		sqlBytes, err := os.ReadFile(sqlPath)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", sqlPath, err)
		}

		if _, err := sqlDB.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}

		fmt.Println(">> Migration complete")
		return nil
	},
}
