package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"expensedash/internal/cache"
	"expensedash/internal/cli"
	apphttp "expensedash/internal/http"
	applog "expensedash/internal/log"
	"expensedash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	gin.SetMode(cfg.GinMode)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	cacheManager := cache.NewManager()
	queries := cli.BuildQueryCache(context.Background(), logger, cfg, cacheManager)
	cacheManager.StartCleanup(time.Minute)

	publisher := cli.InitPublisher(logger, cfg)
	expenses := services.NewExpenseService(repo, publisher, queries)
	dashboard := services.NewDashboard(repo, queries)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		AllowOrigins:       cfg.CORSAllowOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              repo.Ping,
		Logger:             logger,
	}, expenses, dashboard)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		}
		cacheManager.Stop()
		if err := expenses.Close(); err != nil {
			logger.Error("Failed to close expense service", applog.FieldError, err)
		}
	})

	logger.Info("Starting expense dashboard server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"db", cfg.SQLiteDBPath,
		"cache", cfg.CacheBackend,
		"amqp", cfg.AMQPEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
