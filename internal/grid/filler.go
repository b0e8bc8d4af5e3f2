package grid

// MaxFillPasses caps the diffusion loop.
const MaxFillPasses = 50

// FillResult describes one Fill run.
type FillResult struct {
	Passes int
	// Interpolated counts cells set from neighbor averages.
	Interpolated int
	// Forced counts cells still empty after the last pass and set to 0.
	Forced int
}

// Fill resolves every empty cell of g in place.
//
// Each pass averages the non-empty Moore neighbors of every empty cell, reading
// from a snapshot of the grid taken before the pass, so values spread one ring
// per pass. The loop stops when a pass changes nothing, when no empty cells
// remain, or after MaxFillPasses. Cells that are still empty become 0.
func Fill(g Grid) FillResult {
	var res FillResult
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return res
	}

	remaining := g.EmptyCells()
	for remaining > 0 && res.Passes < MaxFillPasses {
		res.Passes++
		snapshot := g.Clone()
		changed := 0

		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if !IsEmpty(snapshot[i][j]) {
					continue
				}
				if mean, ok := neighborMean(snapshot, i, j); ok {
					g[i][j] = mean
					changed++
				}
			}
		}

		if changed == 0 {
			break
		}
		res.Interpolated += changed
		remaining -= changed
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if IsEmpty(g[i][j]) {
				g[i][j] = 0
				res.Forced++
			}
		}
	}

	return res
}

func neighborMean(g Grid, i, j int) (float64, bool) {
	var sum float64
	var count int
	for di := -1; di <= 1; di++ {
		ni := i + di
		if ni < 0 || ni >= len(g) {
			continue
		}
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			nj := j + dj
			if nj < 0 || nj >= len(g[ni]) {
				continue
			}
			if v := g[ni][nj]; !IsEmpty(v) {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
