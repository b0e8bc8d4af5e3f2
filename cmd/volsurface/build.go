package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volSurface/internal/config"
	"volSurface/internal/storage"
	"volSurface/internal/storage/postgres"
)

func runBuild(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("at least one of out or pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := loadDataset(cfg, logger)
	if err != nil {
		return err
	}

	snap, err := storage.NewSnapshot(ds.Ticker(), ds.OptionType(), ds.Surface(), time.Now())
	if err != nil {
		return err
	}

	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		// The pool dials lazily, so the schema call is the first round trip.
		if err := storage.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, logger, store.EnsureSchema); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	for _, sink := range sinks {
		err := storage.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, logger, func(ctx context.Context) error {
			return sink.PutSnapshot(ctx, snap)
		})
		if err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}

	logger.Info("build complete",
		zap.String("ticker", snap.Ticker),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("expirations", snap.Summary.Expirations),
		zap.Int("strikes", snap.Summary.Strikes),
		zap.Int("observed", snap.Summary.Observed),
		zap.Int("filled", snap.Summary.Filled),
	)

	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
