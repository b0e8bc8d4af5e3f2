package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTotal(t *testing.T, g Grid) {
	t.Helper()
	for i, row := range g {
		for j, v := range row {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "cell (%d,%d) = %v", i, j, v)
		}
	}
}

func TestFillTotality(t *testing.T) {
	for _, size := range []int{1, 2, 5, 13, 20} {
		g := NewGrid(size, size)
		g[size/2][0] = 0.3
		g[0][size-1] = 0.5

		Fill(g)
		assertTotal(t, g)
	}
}

func TestFillCornerSeedSpreadsOneRingPerPass(t *testing.T) {
	g := NewGrid(20, 20)
	g[0][0] = 0.4

	res := Fill(g)
	assertTotal(t, g)
	assert.Equal(t, 19, res.Passes)
	assert.Equal(t, 0, res.Forced)
	assert.Equal(t, 399, res.Interpolated)
	for _, row := range g {
		for _, v := range row {
			assert.InDelta(t, 0.4, v, 1e-12)
		}
	}
}

func TestFillSnapshotPerPass(t *testing.T) {
	g := NewGrid(1, 4)
	g[0][0] = 1

	Fill(g)
	// Values copy outward one cell per pass rather than chaining within a pass.
	assert.Equal(t, []float64{1, 1, 1, 1}, []float64(g[0]))

	g = NewGrid(1, 3)
	g[0][0] = 1
	g[0][2] = 3
	res := Fill(g)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 2.0, g[0][1])
}

func TestFillConvergenceBound(t *testing.T) {
	g := NewGrid(60, 60)
	g[0][0] = 0.25

	res := Fill(g)
	assertTotal(t, g)
	assert.Equal(t, MaxFillPasses, res.Passes)
	assert.Greater(t, res.Forced, 0)
	// Cells beyond 50 rings from the seed are forced to zero.
	assert.Equal(t, 0.0, g[59][59])
	assert.InDelta(t, 0.25, g[50][50], 1e-12)
}

func TestFillAllEmpty(t *testing.T) {
	g := NewGrid(3, 4)
	res := Fill(g)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 12, res.Forced)
	for _, row := range g {
		for _, v := range row {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestFillFullyObservedIsNoop(t *testing.T) {
	g := Grid{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
	}
	before := g.Clone()

	res := Fill(g)
	assert.Equal(t, before, g)
	assert.Equal(t, 0, res.Passes)
	assert.Equal(t, 0, res.Interpolated)
}
