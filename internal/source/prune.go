package source

import "volSurface/internal/model"

// PruneConfig bounds the quotes considered plausible for a surface.
type PruneConfig struct {
	MinMoneyness float64
	MaxMoneyness float64
	MinIV        float64
	MaxIV        float64
	MaxDays      float64
}

// DefaultPruneConfig keeps moneyness within 50% of spot, IV in [0.001, 2] and
// expirations up to 61 days.
func DefaultPruneConfig() PruneConfig {
	return PruneConfig{
		MinMoneyness: 0.5,
		MaxMoneyness: 1.5,
		MinIV:        0.001,
		MaxIV:        2,
		MaxDays:      61,
	}
}

// Prune drops outlier quotes. The input slice is not modified.
func Prune(points []model.QuotePoint, cfg PruneConfig) []model.QuotePoint {
	out := make([]model.QuotePoint, 0, len(points))
	for _, p := range points {
		if p.Moneyness < cfg.MinMoneyness || p.Moneyness > cfg.MaxMoneyness {
			continue
		}
		if p.ImpliedVolatility < cfg.MinIV || p.ImpliedVolatility > cfg.MaxIV {
			continue
		}
		if p.DaysToExpiration > cfg.MaxDays {
			continue
		}
		out = append(out, p)
	}
	return out
}
