package maze

import (
	"fmt"
)

// Door animates one shared edge between open and closed over a fixed duration
// The wall bit flips at the animation midpoint; before that the old state stays in effect
// Driven by Update from the frame loop, no goroutines
type Door struct {
	grid *Grid
	Cell Point
	Dir  Direction

	// Open is the target state
	Open     bool
	Duration float64 // seconds

	elapsed float64
	applied bool
	done    bool
}

// NewDoor validates the edge and prepares an animation toward the open/closed state
func NewDoor(grid *Grid, cell Point, dir Direction, open bool, duration float64) (*Door, error) {
	if !grid.InBounds(cell.X, cell.Y) || dir >= DirCount {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, cell.X, cell.Y)
	}
	if _, ok := grid.Neighbor(cell.X, cell.Y, dir); !ok {
		return nil, fmt.Errorf("%w: (%d,%d) %s", ErrBoundaryWall, cell.X, cell.Y, dir)
	}
	if duration < 0 {
		duration = 0
	}
	return &Door{
		grid:     grid,
		Cell:     cell,
		Dir:      dir,
		Open:     open,
		Duration: duration,
	}, nil
}

// Update advances the animation and returns true once it has completed
func (d *Door) Update(dt float64) bool {
	if d.done {
		return true
	}
	d.elapsed += dt

	if !d.applied && d.Progress() >= 0.5 {
		// Edge validated at construction, SetPassage cannot fail here
		_ = d.grid.SetPassage(d.Cell.X, d.Cell.Y, d.Dir, d.Open)
		d.applied = true
	}

	if d.Progress() >= 1 {
		d.done = true
	}
	return d.done
}

// Progress returns animation completion in [0,1]
func (d *Door) Progress() float64 {
	if d.Duration <= 0 {
		return 1
	}
	p := d.elapsed / d.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Done reports whether the animation has finished
func (d *Door) Done() bool {
	return d.done
}
