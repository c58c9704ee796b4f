package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/bodaform/internal/api"
	"github.com/mcoot/bodaform/internal/config"
	"github.com/mcoot/bodaform/internal/factory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)
	cfg.Factory.Logger = logger

	if cfg.Factory.AuthConfig.Secret == "" {
		logger.Warn("AUTH_SECRET not set; sessions will not survive a restart")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg.Factory)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("storage ready", slog.String("type", cfg.Factory.StorageType))

	// Make sure somebody can review the answers
	generated, created, err := app.AuthService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Error("failed to bootstrap admin", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if created {
		attrs := []any{slog.String("username", cfg.AdminUsername)}
		if generated != "" {
			attrs = append(attrs, slog.String("password", generated))
		}
		logger.Warn("created admin account", attrs...)
	}

	// Create API router
	routerCfg := app.RouterConfig()
	routerCfg.ProtectUserRoutes = cfg.ProtectUserRoutes
	router := api.NewRouter(routerCfg)

	// Create server
	server := api.NewServer(router, cfg.Server, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
