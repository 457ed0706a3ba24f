package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stake-plus/castlotto/src/config"
	"github.com/stake-plus/castlotto/src/data"
	"github.com/stake-plus/castlotto/src/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	logLevel string
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "castlotto",
	Short: "Two-digit reply lottery for a single Farcaster cast",
	Long: `castlotto reads the direct replies to one cast, gives each participant the
first standalone two-digit number they posted before the daily cutoff, and
checks saved results against the winning numbers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	defaultLevel := os.Getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "debug|info|warn|error")
	rootCmd.AddCommand(serveCmd, snapshotCmd, checkWinnerCmd)
}

// loadConfig reads configuration, consulting the settings table when
// MYSQL_DSN is set.
func loadConfig() (config.Config, error) {
	var db *gorm.DB
	if dsn := config.MySQLDSN(); dsn != "" {
		var err error
		db, err = data.ConnectMySQL(dsn, logger)
		if err != nil {
			return config.Config{}, fmt.Errorf("db: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
	}
	return config.Load(db, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
