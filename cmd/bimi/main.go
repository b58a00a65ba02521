// Package main is the entry point for the bimi beverage ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/config"
	"bimi-ledger/internal/handler"
	"bimi-ledger/internal/pkg/db"
	"bimi-ledger/internal/report"
	"bimi-ledger/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flags := pflag.NewFlagSet("bimi", pflag.ExitOnError)
	flags.SetInterspersed(false)
	configDir := flags.String("config", "config", "directory containing config.yaml")
	_ = flags.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Log.Level).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	// Cancel the running command on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	if err := store.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap store")
	}
	if err := store.HealthCheck(ctx); err != nil {
		log.Fatal().Err(err).Msg("Store health check failed")
	}

	ledger := service.NewLedger(store.DB)
	reporter := report.NewReporter(ledger, cfg.Ledger)

	registry := handler.NewRegistry()
	if err := handler.New(ledger, reporter, cfg.Ledger.Currency, os.Stdout).Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register commands")
	}
	log.Debug().Int("commands", registry.Count()).Msg("Commands registered")

	args := flags.Args()
	if len(args) == 0 {
		printUsage(registry)
		os.Exit(2)
	}

	cmd, ok := registry.Get(args[0])
	if !ok {
		printUsage(registry)
		os.Exit(2)
	}

	if err := cmd.Run(ctx, args[1:]); err != nil {
		if apperrors.IsFatal(err) {
			log.Fatal().Err(err).Str("command", cmd.Name).Msg("Store failure")
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		store.Close()
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return 2
	case errors.Is(err, apperrors.ErrNotFound):
		return 3
	default:
		return 1
	}
}

func printUsage(registry *handler.Registry) {
	fmt.Fprintln(os.Stderr, "usage: bimi [--config DIR] COMMAND [ARGS]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, c := range registry.Commands() {
		fmt.Fprintf(os.Stderr, "  %s\n", c.Usage)
	}
}
