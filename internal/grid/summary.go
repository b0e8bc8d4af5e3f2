package grid

import (
	"github.com/montanaflynn/stats"
)

// Summary describes a built surface for reports and the API.
type Summary struct {
	Expirations  int     `json:"expirations"`
	Strikes      int     `json:"strikes"`
	Kept         int     `json:"kept"`
	Observed     int     `json:"observed"`
	Filled       int     `json:"filled"`
	Collisions   int     `json:"collisions"`
	FillPasses   int     `json:"fill_passes"`
	MinIV        float64 `json:"min_iv"`
	MaxIV        float64 `json:"max_iv"`
	MeanIV       float64 `json:"mean_iv"`
	MedianIV     float64 `json:"median_iv"`
	HasIVSummary bool    `json:"has_iv_summary"`
}

// Summarize computes counts and IV statistics over the observed cells of s.
func Summarize(s *Surface) Summary {
	if s == nil {
		return Summary{}
	}

	observed := make(stats.Float64Data, 0, s.Kept)
	for i, row := range s.Info {
		for j, cell := range row {
			if cell == nil {
				continue
			}
			observed = append(observed, s.Vol[i][j])
		}
	}

	sum := Summary{
		Expirations: s.Rows(),
		Strikes:     s.Cols(),
		Kept:        s.Kept,
		Observed:    len(observed),
		Filled:      s.Rows()*s.Cols() - len(observed),
		Collisions:  s.Collisions,
		FillPasses:  s.FillPasses,
	}
	if len(observed) == 0 {
		return sum
	}

	// stats only fails on empty input, which is excluded above.
	sum.MinIV, _ = observed.Min()
	sum.MaxIV, _ = observed.Max()
	sum.MeanIV, _ = observed.Mean()
	sum.MedianIV, _ = observed.Median()
	sum.HasIVSummary = true
	return sum
}
