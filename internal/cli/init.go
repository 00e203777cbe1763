// Package cli holds the start-up helpers shared by the finreport commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finreport/internal/amqp"
	"finreport/internal/config"
	"finreport/internal/log"
	"finreport/internal/report"
	"finreport/internal/storage"
)

// SetupLogger builds the application logger for level and makes it the
// slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Output = os.Stderr
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Failure(context.Background(), "Configuration validation failed", err,
			log.OpStartup, log.ErrorTypeConfiguration, nil)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite snapshot at dbPath, running migrations.
// Exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Failure(context.Background(), "Failed to initialize SQLite repository", err,
			log.OpStartup, log.ErrorTypeDatabase, log.NewFields().With(log.FieldFile, dbPath))
		os.Exit(1)
	}
	return repo
}

// InitNotifier connects the report notifier when AMQP is configured. It
// returns nil, and a no-op close, when notifications are disabled or the
// broker is unreachable: reports are still written without it.
func InitNotifier(cfg *config.Config, logger *log.Logger) (report.Notifier, func()) {
	if !cfg.NotificationsEnabled() {
		return nil, func() {}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Failure(context.Background(), "Report notifications disabled", err,
			log.OpStartup, log.ErrorTypeNetwork, nil)
		return nil, func() {}
	}
	logger.Info("Report notifications enabled",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP connection", log.FieldError, err)
		}
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// The returned context is cancelled once a signal arrives and cleanup has
// run, or the timeout has elapsed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

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
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
		cancel()
	}()

	return ctx
}
