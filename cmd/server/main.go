package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/commerce-auth/internal/app"
	"github.com/utafrali/commerce-auth/internal/config"
	"github.com/utafrali/commerce-auth/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("commerce-auth", cfg.LogLevel)
	log.Info("starting auth service",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
	)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("auth service stopped")
}
