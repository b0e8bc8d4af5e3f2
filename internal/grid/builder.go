package grid

import (
	"fmt"
	"sort"

	"volSurface/internal/model"
)

// Filter holds liquidity thresholds. The zero value keeps every point.
type Filter struct {
	MinVolume       int64 `json:"min_volume"`
	MinOpenInterest int64 `json:"min_open_interest"`
}

// Validate rejects negative thresholds.
func (f Filter) Validate() error {
	if f.MinVolume < 0 {
		return fmt.Errorf("min volume must be >= 0")
	}
	if f.MinOpenInterest < 0 {
		return fmt.Errorf("min open interest must be >= 0")
	}
	return nil
}

// Keep reports whether a point survives the thresholds.
func (f Filter) Keep(q model.QuotePoint) bool {
	return q.Volume >= f.MinVolume && q.OpenInterest >= f.MinOpenInterest
}

// Surface is the bucketed grid for one filtered point set.
type Surface struct {
	Expirations []float64
	Moneyness   []float64
	Vol         Grid
	Info        InfoGrid
	Filter      Filter

	// Kept is the number of points that survived the filter.
	Kept int
	// Collisions counts points that overwrote an earlier point in the same cell.
	Collisions int
	// FillPasses is the number of hole-filling passes applied; zero before filling.
	FillPasses int
}

// Rows returns len(Expirations).
func (s *Surface) Rows() int {
	return len(s.Expirations)
}

// Cols returns len(Moneyness).
func (s *Surface) Cols() int {
	return len(s.Moneyness)
}

// Observed counts cells populated from a quote.
func (s *Surface) Observed() int {
	var n int
	for _, row := range s.Info {
		for _, cell := range row {
			if cell != nil {
				n++
			}
		}
	}
	return n
}

// Build buckets points onto the expiration x moneyness grid.
//
// Points failing the filter are dropped before the axes are derived. Axis values
// are deduplicated by exact equality. When two kept points share a cell the later
// one wins. The returned grid is unfilled.
func Build(points []model.QuotePoint, filter Filter) (*Surface, error) {
	if len(points) == 0 {
		return nil, ErrEmptyDataset
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	kept := make([]model.QuotePoint, 0, len(points))
	for idx, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", idx, err)
		}
		if filter.Keep(p) {
			kept = append(kept, p)
		}
	}

	expirations := uniqueSorted(kept, func(p model.QuotePoint) float64 { return p.DaysToExpiration })
	moneyness := uniqueSorted(kept, func(p model.QuotePoint) float64 { return p.Moneyness })
	expIdx := indexOf(expirations)
	monIdx := indexOf(moneyness)

	s := &Surface{
		Expirations: expirations,
		Moneyness:   moneyness,
		Vol:         NewGrid(len(expirations), len(moneyness)),
		Info:        NewInfoGrid(len(expirations), len(moneyness)),
		Filter:      filter,
		Kept:        len(kept),
	}

	for _, p := range kept {
		i := expIdx[p.DaysToExpiration]
		j := monIdx[p.Moneyness]
		if s.Info[i][j] != nil {
			s.Collisions++
		}
		info := p.Info()
		s.Vol[i][j] = p.ImpliedVolatility
		s.Info[i][j] = &info
	}

	return s, nil
}

func uniqueSorted(points []model.QuotePoint, key func(model.QuotePoint) float64) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, key(p))
	}
	sort.Float64s(values)

	out := values[:0]
	for idx, v := range values {
		if idx > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

func indexOf(axis []float64) map[float64]int {
	idx := make(map[float64]int, len(axis))
	for i, v := range axis {
		idx[v] = i
	}
	return idx
}
