package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"muttonhub-backend/internal/config"
	"muttonhub-backend/internal/database"
	"muttonhub-backend/internal/logger"
	"muttonhub-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			boot := logger.New("release")
			boot.Error("Configuration incomplete, the server cannot start",
				zap.Strings("missing", missing.Keys),
				zap.Strings("checklist", missing.Checklist),
			)
			_ = boot.Sync()
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// 2. Infrastructure
	appLogger := logger.New(cfg.Mode)
	defer appLogger.Sync()

	db, err := database.Open(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Database connection failed", zap.Error(err))
	}

	// 3. HTTP gateway
	app := server.New(cfg, appLogger, db)

	go func() {
		appLogger.Info("muttonhub backend started", zap.String("port", cfg.HTTPPort), zap.String("mode", cfg.Mode))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			appLogger.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info("Server stopped")
}
