package navigation

import (
	"fmt"

	"github.com/lixenwraith/hushmaze/maze"
)

// Flow direction markers outside the maze.Direction range
const (
	FlowNone   int8 = -1 // Unreachable or not computed
	FlowTarget int8 = -2 // At target cell
)

// FlowField stores, per cell, the first step toward a target cell over open maze edges
// Every edge costs one step, so a breadth-first pass yields exact step counts
type FlowField struct {
	grid       *maze.Grid
	Target     maze.Point
	Directions []int8 // maze.Direction index, or FlowNone/FlowTarget
	Distances  []int  // Steps to target, -1 if unreachable

	version uint64
	valid   bool
	queue   []int // Reused BFS queue
}

// NewFlowField creates an empty field over grid
func NewFlowField(grid *maze.Grid) *FlowField {
	size := grid.Width * grid.Height
	return &FlowField{
		grid:       grid,
		Directions: make([]int8, size),
		Distances:  make([]int, size),
		queue:      make([]int, 0, size),
	}
}

// Compute floods from target across open edges
func (f *FlowField) Compute(target maze.Point) error {
	g := f.grid
	if !g.InBounds(target.X, target.Y) {
		f.valid = false
		return fmt.Errorf("%w: flow target (%d,%d)", maze.ErrOutOfBounds, target.X, target.Y)
	}

	for i := range f.Directions {
		f.Directions[i] = FlowNone
		f.Distances[i] = -1
	}

	w := g.Width
	start := target.Y*w + target.X
	f.Distances[start] = 0
	f.Directions[start] = FlowTarget
	f.queue = append(f.queue[:0], start)

	for head := 0; head < len(f.queue); head++ {
		idx := f.queue[head]
		cx, cy := idx%w, idx/w
		for d := maze.Direction(0); d < maze.DirCount; d++ {
			if g.HasWall(cx, cy, d) {
				continue
			}
			n, ok := g.Neighbor(cx, cy, d)
			if !ok {
				continue
			}
			nIdx := n.Y*w + n.X
			if f.Distances[nIdx] >= 0 {
				continue
			}
			f.Distances[nIdx] = f.Distances[idx] + 1
			// Neighbor steps back through the shared edge
			f.Directions[nIdx] = int8(d.Opposite())
			f.queue = append(f.queue, nIdx)
		}
	}

	f.Target = target
	f.version = g.Version()
	f.valid = true
	return nil
}

// Stale reports whether the grid changed since the last Compute
func (f *FlowField) Stale() bool {
	return !f.valid || f.version != f.grid.Version()
}

// Refresh recomputes toward the current target when the grid changed
func (f *FlowField) Refresh() {
	if f.valid && f.version != f.grid.Version() {
		_ = f.Compute(f.Target)
	}
}

// Valid reports whether a field has been computed
func (f *FlowField) Valid() bool {
	return f.valid
}

// Direction returns the step from p toward the target; false at the target or when unreachable
func (f *FlowField) Direction(p maze.Point) (maze.Direction, bool) {
	if !f.valid || !f.grid.InBounds(p.X, p.Y) {
		return 0, false
	}
	d := f.Directions[p.Y*f.grid.Width+p.X]
	if d < 0 {
		return 0, false
	}
	return maze.Direction(d), true
}

// Distance returns steps from p to the target, -1 if unreachable or out of bounds
func (f *FlowField) Distance(p maze.Point) int {
	if !f.valid || !f.grid.InBounds(p.X, p.Y) {
		return -1
	}
	return f.Distances[p.Y*f.grid.Width+p.X]
}
