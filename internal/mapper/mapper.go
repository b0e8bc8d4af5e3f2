package mapper

import (
	"fmt"
	"math"

	"volSurface/internal/grid"
	"volSurface/internal/model"
)

// Render volume: local [0,1]^3 is scaled by Extent and shifted by Offset.
const (
	ExtentX = 8.0
	ExtentY = 4.0
	ExtentZ = 8.0
	OffsetX = -4.0
	OffsetZ = -4.0
)

// Vec3 is a point in local or world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cell addresses a grid cell: I indexes expirations, J indexes moneyness.
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Point is one addressable cell placed in world space.
type Point struct {
	Index int  `json:"index"`
	Cell  Cell `json:"cell"`
	World Vec3 `json:"world"`
}

// Hit is the resolved cell under a pick coordinate.
type Hit struct {
	Cell       Cell                `json:"cell"`
	Expiration float64             `json:"expiration"`
	Moneyness  float64             `json:"moneyness"`
	IV         float64             `json:"iv"`
	Normalized float64             `json:"normalized"`
	World      Vec3                `json:"world"`
	Info       *model.ContractInfo `json:"info,omitempty"`
	// PointIndex is -1 for cells produced only by filling.
	PointIndex int `json:"point_index"`
}

// Addressable reports whether cell (i, j) is a rendered point. Forward and
// inverse lookups both go through this predicate.
func Addressable(info grid.InfoGrid, i, j int) bool {
	return info.Has(i, j)
}

// Mapper converts between grid indices, local coordinates and world coordinates
// for one surface.
type Mapper struct {
	surface    *grid.Surface
	rows, cols int
	normalized grid.Grid
	rng        grid.Range
	index      [][]int
	cells      []Cell
}

// New builds the mapping for s. The surface is read, never modified.
func New(s *grid.Surface) *Mapper {
	m := &Mapper{
		surface: s,
		rows:    s.Rows(),
		cols:    s.Cols(),
	}
	m.normalized, m.rng = grid.Normalize(s.Vol)

	m.index = make([][]int, m.rows)
	for i := 0; i < m.rows; i++ {
		m.index[i] = make([]int, m.cols)
		for j := 0; j < m.cols; j++ {
			if !Addressable(s.Info, i, j) {
				m.index[i][j] = -1
				continue
			}
			m.index[i][j] = len(m.cells)
			m.cells = append(m.cells, Cell{I: i, J: j})
		}
	}
	return m
}

// Rows returns the expiration axis size.
func (m *Mapper) Rows() int {
	return m.rows
}

// Cols returns the moneyness axis size.
func (m *Mapper) Cols() int {
	return m.cols
}

// Normalized returns the display grid the Y coordinates are taken from.
func (m *Mapper) Normalized() grid.Grid {
	return m.normalized
}

// Range returns the IV span used for normalization.
func (m *Mapper) Range() grid.Range {
	return m.rng
}

// Degenerate reports that an axis has fewer than two values, so the surface has
// no quads to render or pick against.
func (m *Mapper) Degenerate() bool {
	return m.rows < 2 || m.cols < 2
}

// Validate returns ErrEmptyDataset or ErrDegenerateAxis for surfaces that cannot
// be meshed.
func (m *Mapper) Validate() error {
	switch {
	case m.rows == 0 || m.cols == 0:
		return grid.ErrEmptyDataset
	case m.rows < 2:
		return fmt.Errorf("%w: single expiration", grid.ErrDegenerateAxis)
	case m.cols < 2:
		return fmt.Errorf("%w: single moneyness value", grid.ErrDegenerateAxis)
	default:
		return nil
	}
}

func (m *Mapper) inBounds(i, j int) bool {
	return i >= 0 && i < m.rows && j >= 0 && j < m.cols
}

// axisCoord maps index k of an n-value axis to [0,1]. A single-value axis sits at 0.
func axisCoord(k, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(k) / float64(n-1)
}

// axisIndex is the inverse of axisCoord with half-up rounding. The value of a
// single-value axis sits at 0 and claims [-0.5, 0.5), the window the first cell
// of a two-value axis gets, so picks elsewhere miss.
func axisIndex(c float64, n int) (int, bool) {
	if n == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, false
	}
	span := float64(n - 1)
	if n == 1 {
		span = 1
	}
	k := math.Floor(c*span + 0.5)
	if k < 0 || k >= float64(n) {
		return 0, false
	}
	return int(k), true
}

// Local returns the [0,1] coordinates of cell (i, j).
func (m *Mapper) Local(i, j int) (Vec3, bool) {
	if !m.inBounds(i, j) {
		return Vec3{}, false
	}
	return Vec3{
		X: axisCoord(j, m.cols),
		Y: m.normalized[i][j],
		Z: axisCoord(i, m.rows),
	}, true
}

// World returns the render-space position of cell (i, j).
func (m *Mapper) World(i, j int) (Vec3, bool) {
	local, ok := m.Local(i, j)
	if !ok {
		return Vec3{}, false
	}
	return ToWorld(local), true
}

// ToWorld applies the render transform to a local coordinate.
func ToWorld(local Vec3) Vec3 {
	return Vec3{
		X: local.X*ExtentX + OffsetX,
		Y: local.Y * ExtentY,
		Z: local.Z*ExtentZ + OffsetZ,
	}
}

// ToLocal inverts ToWorld.
func ToLocal(world Vec3) Vec3 {
	return Vec3{
		X: (world.X - OffsetX) / ExtentX,
		Y: world.Y / ExtentY,
		Z: (world.Z - OffsetZ) / ExtentZ,
	}
}

// PointIndex returns the linear point index of (i, j). Only addressable cells
// have one; indices count addressable cells in row-major order.
func (m *Mapper) PointIndex(i, j int) (int, bool) {
	if !m.inBounds(i, j) {
		return -1, false
	}
	idx := m.index[i][j]
	return idx, idx >= 0
}

// Cell returns the grid cell of a linear point index.
func (m *Mapper) Cell(index int) (Cell, bool) {
	if index < 0 || index >= len(m.cells) {
		return Cell{}, false
	}
	return m.cells[index], true
}

// Len returns the number of addressable points.
func (m *Mapper) Len() int {
	return len(m.cells)
}

// Points returns every addressable cell with its world position, in index order.
func (m *Mapper) Points() []Point {
	out := make([]Point, 0, len(m.cells))
	for idx, c := range m.cells {
		world, _ := m.World(c.I, c.J)
		out = append(out, Point{Index: idx, Cell: c, World: world})
	}
	return out
}

// Nearest snaps a world-space coordinate to the closest grid cell. Y is ignored.
func (m *Mapper) Nearest(world Vec3) (Cell, bool) {
	local := ToLocal(world)
	j, ok := axisIndex(local.X, m.cols)
	if !ok {
		return Cell{}, false
	}
	i, ok := axisIndex(local.Z, m.rows)
	if !ok {
		return Cell{}, false
	}
	return Cell{I: i, J: j}, true
}

// Pick resolves a world-space intersection to the cell under it. The hit may be a
// filled cell; its PointIndex is then -1.
func (m *Mapper) Pick(world Vec3) (Hit, bool) {
	c, ok := m.Nearest(world)
	if !ok {
		return Hit{}, false
	}

	pos, _ := m.World(c.I, c.J)
	idx, _ := m.PointIndex(c.I, c.J)
	return Hit{
		Cell:       c,
		Expiration: m.surface.Expirations[c.I],
		Moneyness:  m.surface.Moneyness[c.J],
		IV:         m.surface.Vol[c.I][c.J],
		Normalized: m.normalized[c.I][c.J],
		World:      pos,
		Info:       m.surface.Info[c.I][c.J],
		PointIndex: idx,
	}, true
}

// PickPoint resolves a world-space intersection to an addressable point index.
func (m *Mapper) PickPoint(world Vec3) (int, bool) {
	c, ok := m.Nearest(world)
	if !ok {
		return -1, false
	}
	return m.PointIndex(c.I, c.J)
}
