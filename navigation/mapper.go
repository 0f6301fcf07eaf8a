package navigation

import (
	"math"

	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Mapper converts between world positions and grid cells
// Cell (0,0) spans [0,CellSize) on both axes
type Mapper struct {
	CellSize float64
	// Offset is the per-cell anchor relative to the cell's minimum corner
	Offset vmath.Vec2
}

// NewMapper returns a mapper anchored at cell centers
func NewMapper(cellSize float64) Mapper {
	return Mapper{
		CellSize: cellSize,
		Offset:   vmath.Vec2{X: cellSize / 2, Y: cellSize / 2},
	}
}

// CellOf floor-divides a world position into a cell coordinate
func (m Mapper) CellOf(p vmath.Vec2) maze.Point {
	return maze.Point{
		X: int(math.Floor(p.X / m.CellSize)),
		Y: int(math.Floor(p.Y / m.CellSize)),
	}
}

// CellAnchor returns index*CellSize + Offset
func (m Mapper) CellAnchor(c maze.Point) vmath.Vec2 {
	return vmath.Vec2{
		X: float64(c.X)*m.CellSize + m.Offset.X,
		Y: float64(c.Y)*m.CellSize + m.Offset.Y,
	}
}

// CellMin returns the minimum corner of a cell
func (m Mapper) CellMin(c maze.Point) vmath.Vec2 {
	return vmath.Vec2{X: float64(c.X) * m.CellSize, Y: float64(c.Y) * m.CellSize}
}

// CellCenter returns the geometric center of a cell
func (m Mapper) CellCenter(c maze.Point) vmath.Vec2 {
	return vmath.Vec2{
		X: (float64(c.X) + 0.5) * m.CellSize,
		Y: (float64(c.Y) + 0.5) * m.CellSize,
	}
}
