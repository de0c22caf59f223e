// Package cli holds the startup and shutdown steps of the server binary.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"asicrev/internal/config"
	applog "asicrev/internal/log"
)

// SetupLogger builds the application logger at the given level and installs it
// as the slog default.
func SetupLogger(level slog.Level) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = level
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env files for local development. A missing file is not an
// error; a malformed one is.
func LoadEnvFile(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var present []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Shutdowner is implemented by servers that can drain in-flight requests.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// WaitForSignal blocks until ctx is done or SIGINT/SIGTERM arrives, then gives
// srv up to timeout to shut down.
func WaitForSignal(ctx context.Context, logger *applog.Logger, srv Shutdowner, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
		}
		return err
	}
	logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
	return nil
}
