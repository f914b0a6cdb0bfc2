// aura is the terminal client of the Aura clinic backend.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/config"
	"github.com/aura-clinic/aura/internal/session"
	"github.com/aura-clinic/aura/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags config.ClientFlags
	var envFile, logOutput string

	flagSet := pflag.NewFlagSet("aura", pflag.ContinueOnError)
	flagSet.StringVar(&flags.APIURL, "api-url", "", "backend origin, e.g. http://192.168.0.10:8000 (overrides AURA_API_URL)")
	flagSet.StringVar(&flags.Platform, "platform", "", "android-emulator or generic (overrides AURA_PLATFORM)")
	flagSet.StringVar(&flags.ConfigPath, "config", "", "YAML client config file (default: $XDG_CONFIG_HOME/aura/config.yaml)")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flagSet.StringVar(&logOutput, "log-output", "", "write log records to this file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	// a missing .env is normal for the client
	_ = godotenv.Load(envFile)

	cfg, err := config.LoadClient(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("resolved backend", "base_url", cfg.BaseURL, "source", cfg.Source, "platform", cfg.Platform)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	token := &session.Token{}
	api := client.New(cfg.BaseURL, token, client.WithTimeout(cfg.Timeout), client.WithLogger(logger))
	router := session.NewRouter(api, nil, logger)
	defer router.Close()

	model := tui.New(ctx, tui.Deps{API: api, Router: router, Logger: logger})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// openLogger writes text records to path; without a path logs are
// discarded since the terminal belongs to the UI.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}
