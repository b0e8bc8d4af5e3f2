package grid

import (
	"fmt"

	"go.uber.org/zap"

	"volSurface/internal/model"
)

// Dataset owns the raw quote batch for one ticker and the surface built from it.
//
// The batch is retained so liquidity thresholds can be re-applied without a new
// fetch. A Dataset has no internal locking; callers serialize Reprocess calls.
type Dataset struct {
	ticker     string
	optionType model.OptionType
	points     []model.QuotePoint
	surface    *Surface
	logger     *zap.Logger
}

// NewDataset retains points and builds the unfiltered surface.
func NewDataset(ticker string, optionType model.OptionType, points []model.QuotePoint, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(points) == 0 {
		return nil, ErrEmptyDataset
	}

	d := &Dataset{
		ticker:     ticker,
		optionType: optionType,
		points:     append([]model.QuotePoint(nil), points...),
		logger:     logger,
	}
	if _, err := d.Reprocess(0, 0); err != nil {
		return nil, err
	}
	return d, nil
}

// Ticker returns the instrument the batch belongs to.
func (d *Dataset) Ticker() string {
	return d.ticker
}

// OptionType returns the chain side of the batch.
func (d *Dataset) OptionType() model.OptionType {
	return d.optionType
}

// Points returns the number of retained raw points.
func (d *Dataset) Points() int {
	return len(d.points)
}

// Surface returns the current filled surface.
func (d *Dataset) Surface() *Surface {
	return d.surface
}

// Reprocess rebuilds the surface from the retained batch under new thresholds.
// The previous surface is replaced, never patched.
func (d *Dataset) Reprocess(minVolume, minOpenInterest int64) (*Surface, error) {
	filter := Filter{MinVolume: minVolume, MinOpenInterest: minOpenInterest}
	s, err := Build(d.points, filter)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}

	res := Fill(s.Vol)
	s.FillPasses = res.Passes
	d.surface = s

	if s.Collisions > 0 {
		d.logger.Debug("duplicate cells overwritten",
			zap.String("ticker", d.ticker),
			zap.Int("collisions", s.Collisions),
		)
	}
	if s.Kept == 0 {
		d.logger.Warn("all points filtered out",
			zap.String("ticker", d.ticker),
			zap.Int64("min_volume", minVolume),
			zap.Int64("min_open_interest", minOpenInterest),
		)
	}
	d.logger.Info("surface rebuilt",
		zap.String("ticker", d.ticker),
		zap.String("type", string(d.optionType)),
		zap.Int("points", len(d.points)),
		zap.Int("kept", s.Kept),
		zap.Int("expirations", s.Rows()),
		zap.Int("moneyness", s.Cols()),
		zap.Int("fill_passes", res.Passes),
		zap.Int("interpolated", res.Interpolated),
		zap.Int("forced", res.Forced),
	)

	return s, nil
}
