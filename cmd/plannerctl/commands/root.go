// Package commands implements the plannerctl administrative CLI.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/cache"
	"github.com/weekendly/planner/internal/config"
	"github.com/weekendly/planner/internal/database"
	"github.com/weekendly/planner/internal/logger"
	"github.com/weekendly/planner/internal/store"
	transport "github.com/weekendly/planner/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "plannerctl",
	Short: "Administer the weekend planner data store",
	Long: `plannerctl runs data management operations directly against the
planner database: export, import, compaction, catalog seeding, and
sync queue inspection.`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

// openStore builds a store over the configured database. withTransport
// controls whether RabbitMQ is dialed; only the sync command needs it.
func openStore(withTransport bool) (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.NewProductionLogger(false)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var publisher transport.Publisher
	var closeTransport func()
	if withTransport {
		rabbit, err := transport.NewRabbitMQTransport(cfg.RabbitMQURL)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		publisher = rabbit
		closeTransport = func() {
			if err := rabbit.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}
	}

	cleanup := func() {
		if closeTransport != nil {
			closeTransport()
		}
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
		_ = logger.Sync(zapLogger)
	}

	return store.New(db, cache.NewMemory(), publisher, zapLogger), cleanup, nil
}
