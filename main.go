package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"catalogsearch/internal/config"
	"catalogsearch/internal/logging"
	"catalogsearch/internal/services"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	app, err := NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Scheduled sync ---
	go services.RunSyncLoop(ctx, app.Monitor, cfg.SyncInterval, logger.Named("scheduler"))

	// --- HTTP server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.AppPort))
		serverErr <- app.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err = <-serverErr:
		err = fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	if shutdownErr := app.Fiber.Shutdown(); shutdownErr != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(shutdownErr))
	}
	if closeErr := app.Close(); closeErr != nil {
		logger.Error("Error releasing resources", zap.Error(closeErr))
	}
	logger.Info("Server gracefully stopped")
	return err
}
