package main

import (
	"fmt"

	"go.uber.org/zap"

	"volSurface/internal/config"
	"volSurface/internal/grid"
	"volSurface/internal/model"
	"volSurface/internal/source"
)

// loadDataset reads the configured batch and builds the surface under the
// configured thresholds.
func loadDataset(cfg config.Config, logger *zap.Logger) (*grid.Dataset, error) {
	if cfg.Input == "" {
		return nil, fmt.Errorf("input path is required")
	}

	optionType, err := model.ParseOptionType(cfg.OptionType)
	if err != nil {
		return nil, err
	}

	format, err := source.ParseFormat(cfg.Format, cfg.Input)
	if err != nil {
		return nil, err
	}

	points, err := source.ReadFile(cfg.Input, format)
	if err != nil {
		return nil, err
	}
	read := len(points)

	if cfg.Prune {
		points = source.Prune(points, source.DefaultPruneConfig())
	}

	logger.Info("quotes loaded",
		zap.String("in", cfg.Input),
		zap.String("format", string(format)),
		zap.String("ticker", cfg.Ticker),
		zap.String("type", string(optionType)),
		zap.Int("read", read),
		zap.Int("after_prune", len(points)),
	)

	ds, err := grid.NewDataset(cfg.Ticker, optionType, points, logger)
	if err != nil {
		return nil, err
	}
	if cfg.MinVolume != 0 || cfg.MinOpenInterest != 0 {
		if _, err := ds.Reprocess(cfg.MinVolume, cfg.MinOpenInterest); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
