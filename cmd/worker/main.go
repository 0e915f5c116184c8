package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/cache"
	"github.com/weekendly/planner/internal/config"
	"github.com/weekendly/planner/internal/database"
	"github.com/weekendly/planner/internal/logger"
	"github.com/weekendly/planner/internal/store"
	transport "github.com/weekendly/planner/internal/sync"
	"github.com/weekendly/planner/internal/workers"
)

// The worker is the receiving half of the sync pipeline: it consumes flushed
// pending changes from the transport and applies them to its store.
func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_sync_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	consumer, err := transport.NewRabbitMQTransport(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	dataStore := store.New(db, cache.NewMemory(), consumer, zapLogger)
	applier := workers.NewApplier(dataStore, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- applier.Run(ctx, consumer, cfg.RabbitMQPrefetch)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zapLogger.Info("worker_shutting_down")
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			zapLogger.Warn("worker_shutdown_timed_out")
		}
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Fatal("worker_stopped_with_error", zap.Error(err))
		}
	}

	zapLogger.Info("worker_exited")
}
