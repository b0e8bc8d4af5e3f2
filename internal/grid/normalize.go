package grid

import "math"

// DegenerateValue is assigned to every non-empty cell when min == max.
const DegenerateValue = 0.0

// Range is the value span a grid was normalized against.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Empty is set when the grid had no non-empty cells.
	Empty bool `json:"empty"`
}

// Degenerate reports min == max over at least one value.
func (r Range) Degenerate() bool {
	return !r.Empty && r.Max == r.Min
}

// Err maps the range to the error taxonomy: ErrEmptyDataset, ErrDegenerateRange or nil.
func (r Range) Err() error {
	switch {
	case r.Empty:
		return ErrEmptyDataset
	case r.Degenerate():
		return ErrDegenerateRange
	default:
		return nil
	}
}

// Normalize returns a new grid with values rescaled to [0,1].
//
// Empty cells are excluded from min/max and stay empty in the output. A degenerate
// range maps every non-empty cell to DegenerateValue. The input is not modified.
func Normalize(g Grid) (Grid, Range) {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1), Empty: true}
	for _, row := range g {
		for _, v := range row {
			if IsEmpty(v) {
				continue
			}
			r.Empty = false
			r.Min = math.Min(r.Min, v)
			r.Max = math.Max(r.Max, v)
		}
	}
	if r.Empty {
		r.Min, r.Max = 0, 0
	}

	out := make(Grid, len(g))
	span := r.Max - r.Min
	for i, row := range g {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			switch {
			case IsEmpty(v):
				out[i][j] = math.NaN()
			case span == 0:
				out[i][j] = DegenerateValue
			default:
				out[i][j] = (v - r.Min) / span
			}
		}
	}
	return out, r
}
