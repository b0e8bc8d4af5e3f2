package grid

import (
	"math"

	"volSurface/internal/model"
)

// Grid is a rows x cols matrix of volatility values indexed [expiration][moneyness].
// Unobserved cells hold NaN until the hole filler resolves them.
type Grid [][]float64

// InfoGrid parallels a Grid. A nil entry means the cell has no observed contract.
type InfoGrid [][]*model.ContractInfo

// NewGrid returns a grid with every cell empty.
func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		row := make([]float64, cols)
		for j := range row {
			row[j] = math.NaN()
		}
		g[i] = row
	}
	return g
}

// NewInfoGrid returns an info grid with no entries.
func NewInfoGrid(rows, cols int) InfoGrid {
	g := make(InfoGrid, rows)
	for i := range g {
		g[i] = make([]*model.ContractInfo, cols)
	}
	return g
}

// IsEmpty reports whether a cell value is unset.
func IsEmpty(v float64) bool {
	return math.IsNaN(v)
}

// Rows returns the number of expiration rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of moneyness columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// EmptyCells counts unset cells.
func (g Grid) EmptyCells() int {
	var n int
	for _, row := range g {
		for _, v := range row {
			if IsEmpty(v) {
				n++
			}
		}
	}
	return n
}

// Has reports whether (i, j) holds an observed contract.
func (g InfoGrid) Has(i, j int) bool {
	if i < 0 || i >= len(g) {
		return false
	}
	if j < 0 || j >= len(g[i]) {
		return false
	}
	return g[i][j] != nil
}
