// Package cli provides common CLI initialization utilities.
// This package consolidates the initialization shared by cmd/expensedash
// and cmd/expensectl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensedash/internal/amqp"
	"expensedash/internal/analytics"
	"expensedash/internal/cache"
	"expensedash/internal/config"
	applog "expensedash/internal/log"
	"expensedash/internal/services"
	"expensedash/internal/storage"
)

// SetupLogger initializes structured logging from the LOG_LEVEL and
// LOG_FORMAT values and sets it as the default logger.
func SetupLogger(level, format string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Format:    format,
		Component: applog.ComponentApp,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// BuildQueryCache returns the query result cache selected by CACHE_BACKEND,
// or nil when caching is disabled. In-memory caches are registered with
// manager for periodic expiry. A Redis backend that cannot be reached falls
// back to memory.
func BuildQueryCache(ctx context.Context, logger *applog.Logger, cfg *config.Config, manager *cache.Manager) cache.Cache[analytics.Table] {
	switch cfg.CacheBackend {
	case config.CacheNone:
		logger.Info("Query cache disabled")
		return nil
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("Query cache backed by Redis", "ttl", cfg.CacheTTL.String())
			return cache.NewRedisCache[analytics.Table](client, "expensedash:query:", cfg.CacheTTL)
		}
		logger.Warn("Redis unavailable, using in-memory query cache", applog.FieldError, err)
	}

	lru := cache.NewLRUCache[analytics.Table](cfg.CacheSize, cfg.CacheTTL)
	if manager != nil {
		manager.Register(lru)
	}
	logger.Info("Query cache in memory", "size", cfg.CacheSize, "ttl", cfg.CacheTTL.String())
	return lru
}

// InitPublisher connects the AMQP publisher. It returns a nil interface when
// AMQP is disabled or unreachable; recording never depends on the broker.
func InitPublisher(logger *applog.Logger, cfg *config.Config) services.Publisher {
	if !cfg.AMQPEnabled() {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, events will not be published", applog.FieldError, err)
		return nil
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
