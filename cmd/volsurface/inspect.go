package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volSurface/internal/config"
	"volSurface/internal/grid"
	"volSurface/internal/mapper"
	"volSurface/internal/model"
	"volSurface/internal/storage"
	"volSurface/internal/storage/postgres"
)

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	normalized, _ := cmd.Flags().GetBool("normalized")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker, surface, err := inspectSurface(ctx, cfg, logger)
	if err != nil {
		return err
	}

	values := surface.Vol
	if normalized {
		values = mapper.New(surface).Normalized()
	}

	writeGrid(os.Stdout, surface, values)
	writeSummary(os.Stdout, ticker, grid.Summarize(surface))
	return nil
}

// inspectSurface picks the surface source: a JSONL snapshot file, the latest
// Postgres snapshot, or a fresh build from the quote batch.
func inspectSurface(ctx context.Context, cfg config.Config, logger *zap.Logger) (string, *grid.Surface, error) {
	switch {
	case cfg.Snapshot != "":
		snap, err := readSnapshotFile(cfg)
		if err != nil {
			return "", nil, err
		}
		logger.Info("snapshot loaded", zap.String("snapshot", cfg.Snapshot), zap.Time("created_at", snap.CreatedAt))
		s, err := snap.Surface()
		return snap.Ticker, s, err

	case cfg.PGDSN != "":
		snap, err := readSnapshotPostgres(ctx, cfg, logger)
		if err != nil {
			return "", nil, err
		}
		logger.Info("snapshot loaded", zap.String("pg_dsn", redactDSN(cfg.PGDSN)), zap.Time("created_at", snap.CreatedAt))
		s, err := snap.Surface()
		return snap.Ticker, s, err

	default:
		ds, err := loadDataset(cfg, logger)
		if err != nil {
			return "", nil, err
		}
		return ds.Ticker(), ds.Surface(), nil
	}
}

func readSnapshotFile(cfg config.Config) (storage.Snapshot, error) {
	optionType, err := model.ParseOptionType(cfg.OptionType)
	if err != nil {
		return storage.Snapshot{}, err
	}
	snaps, err := storage.ReadSnapshots(cfg.Snapshot)
	if err != nil {
		return storage.Snapshot{}, err
	}
	snap, ok := storage.SelectLatest(snaps, cfg.Ticker, optionType)
	if !ok {
		return storage.Snapshot{}, fmt.Errorf("no %s snapshot for ticker %q in %s", optionType, cfg.Ticker, cfg.Snapshot)
	}
	return snap, nil
}

func readSnapshotPostgres(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Snapshot, error) {
	if cfg.Ticker == "" {
		return storage.Snapshot{}, fmt.Errorf("ticker is required to read from postgres")
	}
	optionType, err := model.ParseOptionType(cfg.OptionType)
	if err != nil {
		return storage.Snapshot{}, err
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	var (
		snap  storage.Snapshot
		found bool
	)
	err = storage.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, logger, func(ctx context.Context) error {
		var err error
		snap, found, err = store.LatestSnapshot(ctx, cfg.Ticker, optionType)
		return err
	})
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return storage.Snapshot{}, fmt.Errorf("no %s snapshot for ticker %q in postgres", optionType, cfg.Ticker)
	}
	return snap, nil
}

// writeGrid prints one row per expiration. Observed cells are marked with '*'.
func writeGrid(w io.Writer, s *grid.Surface, values grid.Grid) {
	table := tablewriter.NewWriter(w)

	header := make([]string, 0, s.Cols()+1)
	header = append(header, "days \\ m")
	for _, m := range s.Moneyness {
		header = append(header, strconv.FormatFloat(m, 'f', -1, 64))
	}
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)

	for i, exp := range s.Expirations {
		row := make([]string, 0, s.Cols()+1)
		row = append(row, strconv.FormatFloat(exp, 'f', -1, 64))
		for j := range s.Moneyness {
			cell := strconv.FormatFloat(values[i][j], 'f', 4, 64)
			if s.Info.Has(i, j) {
				cell += "*"
			}
			row = append(row, cell)
		}
		table.Append(row)
	}
	table.Render()
}

func writeSummary(w io.Writer, ticker string, sum grid.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.SetAutoFormatHeaders(false)

	table.Append([]string{"ticker", ticker})
	table.Append([]string{"expirations", strconv.Itoa(sum.Expirations)})
	table.Append([]string{"strikes", strconv.Itoa(sum.Strikes)})
	table.Append([]string{"kept", strconv.Itoa(sum.Kept)})
	table.Append([]string{"observed", strconv.Itoa(sum.Observed)})
	table.Append([]string{"filled", strconv.Itoa(sum.Filled)})
	table.Append([]string{"collisions", strconv.Itoa(sum.Collisions)})
	table.Append([]string{"fill passes", strconv.Itoa(sum.FillPasses)})
	if sum.HasIVSummary {
		table.Append([]string{"min iv", fmt.Sprintf("%.4f", sum.MinIV)})
		table.Append([]string{"max iv", fmt.Sprintf("%.4f", sum.MaxIV)})
		table.Append([]string{"mean iv", fmt.Sprintf("%.4f", sum.MeanIV)})
		table.Append([]string{"median iv", fmt.Sprintf("%.4f", sum.MedianIV)})
	}
	table.Render()
}
