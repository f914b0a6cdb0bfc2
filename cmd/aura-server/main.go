// aura-server is the REST backend of the Aura clinic client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/aura-clinic/aura/internal/config"
	"github.com/aura-clinic/aura/internal/server"
	"github.com/aura-clinic/aura/internal/storage"
	"github.com/aura-clinic/aura/internal/storage/memory"
	"github.com/aura-clinic/aura/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("aura-server", pflag.ContinueOnError)
	envFile := flagSet.String("env-file", ".env", "dotenv file loaded before reading the environment")
	addr := flagSet.String("addr", "", "listen address, e.g. 127.0.0.1:8000 (overrides ADDR and PORT)")
	port := flagSet.String("port", "", "override PORT")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	loadLocalEnv(*envFile)
	if *port != "" {
		os.Setenv("PORT", *port)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer closeStore()

	if err := server.EnsureDefaultAdmin(ctx, cfg, store, logger); err != nil {
		return err
	}

	srv := server.New(cfg, store, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("aura backend listening", "addr", cfg.HTTPAddress(), "storage", cfg.Storage, "environment", cfg.Environment)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigCh:
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(), func() {}, nil
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func loadLocalEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		slog.Info("no .env file found; relying on existing environment", "path", path)
	}
}
