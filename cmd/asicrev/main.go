package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"asicrev/internal/cli"
	"asicrev/internal/config"
	apphttp "asicrev/internal/http"
	applog "asicrev/internal/log"
	"asicrev/internal/sources"
	"asicrev/internal/sources/api"
	"asicrev/internal/sources/memory"
)

func main() {
	// Load .env file for local development (missing file is fine)
	if err := cli.LoadEnvFile(); err != nil {
		slog.Error("Failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg.SlogLevel())
	logger.Info("Starting asicrev server", applog.FieldOperation, applog.OpStartup)

	src := newSource(cfg, logger)

	srv := apphttp.NewServer(cfg, src, logger)

	// Configure server timeouts and limits. Writes must outlast an upstream call.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.APITimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var listenErr error
	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		if err, ok := <-serveErr; ok {
			listenErr = err
			cancel()
		}
	}()

	if err := cli.WaitForSignal(ctx, logger, srv, 30*time.Second); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	<-listenDone
	if listenErr != nil {
		logger.Error("Server error", applog.FieldError, listenErr.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func newSource(cfg *config.Config, logger *applog.Logger) sources.Source {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized memory backend", "seed_dir", cfg.SeedDir)
		return memory.NewFromFiles(cfg.SeedDir)
	default:
		base := cfg.APIBaseURL()
		if base == "" {
			logger.Warn("No API base URL configured; the page will report it on load")
		} else {
			logger.Info("Initialized API backend", "base_url", base)
		}
		return api.New(base, api.WithTimeout(cfg.APITimeout))
	}
}
