// Command main is the entry point for the NestAway API server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nestaway/internal/bootstrap"
	"nestaway/internal/config"
	"nestaway/internal/middleware"
	"nestaway/internal/observability"
	"nestaway/internal/server"
)

// @title NestAway API
// @version 1.0
// @description Vacation rental marketplace API: email-verified accounts, listing search and listing creation with photo uploads.

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Stdout)

	ctx := context.Background()
	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "nestaway-api",
			ServiceVersion: "1.0",
			Environment:    cfg.Env,
			Enabled:        true,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampling,
		})
		if err != nil {
			middleware.Logger.Warn("tracing disabled", slog.String("error", err.Error()))
		} else {
			defer func() { _ = shutdownTracing(context.Background()) }()
		}
	}

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedDemo: cfg.Env == "development"})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServer(cfg, rt.Deps())
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := rt.Close(ctx); err != nil {
			middleware.Logger.Error("runtime close error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
