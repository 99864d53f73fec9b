package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sellusgenie-backend/internal/app"
	"sellusgenie-backend/internal/config"
	"sellusgenie-backend/pkg/logger"
	"sellusgenie-backend/pkg/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Init()
		logger.Info("No .env file found, using environment variables", nil)
	}

	cfg := config.New()
	if cfg.IsDevelopment() {
		logger.Init()
	} else {
		logger.InitJSON(cfg.LogLevel)
	}
	logger.Info("Starting SellUsGenie page engine", map[string]interface{}{"environment": cfg.Environment})

	validator.Init()

	application, err := app.New(cfg)
	if err != nil {
		logger.Error(err, "Failed to initialize application", nil)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := application.Run(); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "Failed to start server", nil)
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...", nil)
	case err := <-serverErr:
		logger.Error(err, "Server error occurred, initiating shutdown", nil)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "Server forced to shutdown", nil)
		os.Exit(1)
	}

	logger.Info("Server exited gracefully", nil)
}
