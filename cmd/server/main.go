package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/weekendly/planner/internal/cache"
	"github.com/weekendly/planner/internal/catalog"
	"github.com/weekendly/planner/internal/config"
	"github.com/weekendly/planner/internal/database"
	"github.com/weekendly/planner/internal/handlers"
	"github.com/weekendly/planner/internal/logger"
	"github.com/weekendly/planner/internal/middleware"
	"github.com/weekendly/planner/internal/store"
	transport "github.com/weekendly/planner/internal/sync"
	"github.com/weekendly/planner/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry is optional; a missing endpoint only disables tracing
	var tracerEnabled bool
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "weekend-planner-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

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

	// Cache backend: in-process by default, Redis when configured
	var readCache cache.Cache
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		readCache = redisCache
		redisClient = redisCache.Client()
		zapLogger.Info("connected_to_redis")
	} else {
		readCache = cache.NewMemory()
	}

	publisher := connectTransport(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	dataStore := store.New(db, readCache, publisher, zapLogger)

	if cfg.SeedCatalog {
		if err := catalog.EnsureSeeded(context.Background(), dataStore, zapLogger); err != nil {
			zapLogger.Warn("failed_to_seed_catalog", zap.Error(err))
		}
	}

	weekendHandler := handlers.NewWeekendHandler(dataStore)
	catalogHandler := handlers.NewCatalogHandler(dataStore)
	preferencesHandler := handlers.NewPreferencesHandler(dataStore)
	adminHandler := handlers.NewAdminHandler(dataStore)
	healthChecker := handlers.NewHealthChecker(db, readCache, publisher)

	rateLimitMW, err := middleware.RateLimit(redisClient, middleware.DefaultRateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := mux.NewRouter()
	if tracerEnabled {
		r.Use(otelmux.Middleware("weekend-planner-api"))
	}
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes, no rate limiting on health checks
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)

	weekendHandler.RegisterRoutes(apiRouter.PathPrefix("/weekends").Subrouter())
	catalogHandler.RegisterActivityRoutes(apiRouter.PathPrefix("/activities").Subrouter())
	catalogHandler.RegisterCategoryRoutes(apiRouter.PathPrefix("/categories").Subrouter())
	preferencesHandler.RegisterRoutes(apiRouter.PathPrefix("/preferences").Subrouter())
	adminHandler.RegisterRoutes(apiRouter.PathPrefix("/admin").Subrouter())

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Background retention loop
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()
	compactor := store.NewCompactor(dataStore, time.Duration(cfg.CompactInterval)*time.Hour, zapLogger)
	go func() {
		if err := compactor.Start(backgroundCtx); err != nil && err != context.Canceled {
			zapLogger.Error("compactor_stopped_with_error", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	backgroundCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectTransport dials RabbitMQ with exponential backoff to ride out
// broker startup delays.
func connectTransport(amqpURL string, zapLogger *zap.Logger) *transport.RabbitMQTransport {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		publisher, err := transport.NewRabbitMQTransport(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return publisher
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}
