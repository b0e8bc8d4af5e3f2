package storage

import (
	"context"
	"fmt"
	"math"
	"time"

	"volSurface/internal/grid"
	"volSurface/internal/model"
)

// Storage defines a sink for surface snapshots.
type Storage interface {
	PutSnapshot(ctx context.Context, snap Snapshot) error
}

// Snapshot is a filled surface as persisted by the storage sinks.
type Snapshot struct {
	Ticker      string                  `json:"ticker"`
	OptionType  model.OptionType        `json:"option_type"`
	Filter      grid.Filter             `json:"filter"`
	Expirations []float64               `json:"expirations"`
	Moneyness   []float64               `json:"moneyness"`
	Vol         [][]float64             `json:"vol"`
	Info        [][]*model.ContractInfo `json:"info"`
	Summary     grid.Summary            `json:"summary"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewSnapshot captures a filled surface.
func NewSnapshot(ticker string, optionType model.OptionType, s *grid.Surface, createdAt time.Time) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, fmt.Errorf("surface is nil")
	}
	if s.Vol.EmptyCells() > 0 {
		return Snapshot{}, fmt.Errorf("surface is not filled")
	}

	vol := make([][]float64, len(s.Vol))
	for i, row := range s.Vol {
		vol[i] = append([]float64(nil), row...)
	}
	info := make([][]*model.ContractInfo, len(s.Info))
	for i, row := range s.Info {
		info[i] = append([]*model.ContractInfo(nil), row...)
	}

	return Snapshot{
		Ticker:      ticker,
		OptionType:  optionType,
		Filter:      s.Filter,
		Expirations: append([]float64{}, s.Expirations...),
		Moneyness:   append([]float64{}, s.Moneyness...),
		Vol:         vol,
		Info:        info,
		Summary:     grid.Summarize(s),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// Surface rebuilds the grid view of a snapshot.
func (s Snapshot) Surface() (*grid.Surface, error) {
	rows, cols := len(s.Expirations), len(s.Moneyness)
	if len(s.Vol) != rows || len(s.Info) != rows {
		return nil, fmt.Errorf("snapshot shape mismatch: %d expirations, %d vol rows, %d info rows", rows, len(s.Vol), len(s.Info))
	}

	out := &grid.Surface{
		Expirations: append([]float64{}, s.Expirations...),
		Moneyness:   append([]float64{}, s.Moneyness...),
		Vol:         grid.NewGrid(rows, cols),
		Info:        grid.NewInfoGrid(rows, cols),
		Filter:      s.Filter,
		Kept:        s.Summary.Kept,
		Collisions:  s.Summary.Collisions,
		FillPasses:  s.Summary.FillPasses,
	}
	for i := 0; i < rows; i++ {
		if len(s.Vol[i]) != cols || len(s.Info[i]) != cols {
			return nil, fmt.Errorf("snapshot row %d has wrong width", i)
		}
		for j := 0; j < cols; j++ {
			v := s.Vol[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("snapshot cell (%d,%d) is not finite", i, j)
			}
			out.Vol[i][j] = v
			out.Info[i][j] = s.Info[i][j]
		}
	}
	return out, nil
}
