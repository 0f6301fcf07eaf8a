package maze

import (
	"errors"
	"fmt"
	"strings"
)

// Wall is a per-cell edge bitmask; a set bit means the edge is solid
type Wall uint8

const (
	WallRight Wall = 1 << iota
	WallForward
	WallLeft
	WallBack

	WallNone Wall = 0
	WallAll       = WallRight | WallForward | WallLeft | WallBack
)

// Direction indexes the four cell edges
// Right = +X, Forward = +Y, Left = -X, Back = -Y
type Direction uint8

const (
	Right Direction = iota
	Forward
	Left
	Back
	DirCount
)

// DirVectors matches Right..Back
var DirVectors = [DirCount]Point{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
}

var dirNames = [DirCount]string{"Right", "Forward", "Left", "Back"}

// Wall returns the bit for this direction
func (d Direction) Wall() Wall {
	return 1 << d
}

// Opposite returns the facing edge on the neighbor cell
func (d Direction) Opposite() Direction {
	return (d + 2) % DirCount
}

func (d Direction) String() string {
	if d >= DirCount {
		return fmt.Sprintf("Direction(%d)", d)
	}
	return dirNames[d]
}

// Point is a grid cell coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbor coordinate in direction d, without bounds checking
func (p Point) Step(d Direction) Point {
	v := DirVectors[d]
	return Point{p.X + v.X, p.Y + v.Y}
}

// Sentinel errors
var (
	ErrGridTooSmall     = errors.New("maze grid too small")
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrBoundaryWall     = errors.New("boundary wall cannot be opened")
	ErrInconsistentWall = errors.New("inconsistent shared wall")
	ErrOpenBoundary     = errors.New("open boundary wall")
)

// Grid stores wall flags for width×height cells
// Shared edges are always written on both sides, so a passage is never one-way
type Grid struct {
	Width, Height int
	cells         []Wall // y*Width + x

	// version increments on every wall write after generation
	version uint64
}

func newGrid(width, height int, fill Wall) (*Grid, error) {
	if width <= 0 || height <= 0 || width*height < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, width, height)
	}
	g := &Grid{
		Width:  width,
		Height: height,
		cells:  make([]Wall, width*height),
	}
	for i := range g.cells {
		g.cells[i] = fill
	}
	return g, nil
}

// InBounds reports whether (x,y) is a cell of the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Cell returns the wall mask at (x,y); out-of-bounds reads as fully walled
func (g *Grid) Cell(x, y int) Wall {
	if !g.InBounds(x, y) {
		return WallAll
	}
	return g.cells[y*g.Width+x]
}

// HasWall reports whether edge d of cell (x,y) is solid
func (g *Grid) HasWall(x, y int, d Direction) bool {
	return g.Cell(x, y)&d.Wall() != 0
}

// Neighbor returns the cell across edge d and whether it exists
func (g *Grid) Neighbor(x, y int, d Direction) (Point, bool) {
	n := Point{x, y}.Step(d)
	return n, g.InBounds(n.X, n.Y)
}

// Version returns the wall write counter; consumers use it to detect door changes
func (g *Grid) Version() uint64 {
	return g.version
}

// SetPassage opens or closes the edge between (x,y) and its neighbor in direction d
// Both sides are written. Boundary edges are refused
func (g *Grid) SetPassage(x, y int, d Direction, open bool) error {
	if !g.InBounds(x, y) || d >= DirCount {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	n, ok := g.Neighbor(x, y, d)
	if !ok {
		return fmt.Errorf("%w: (%d,%d) %s", ErrBoundaryWall, x, y, d)
	}
	if open {
		g.cells[y*g.Width+x] &^= d.Wall()
		g.cells[n.Y*g.Width+n.X] &^= d.Opposite().Wall()
	} else {
		g.cells[y*g.Width+x] |= d.Wall()
		g.cells[n.Y*g.Width+n.X] |= d.Opposite().Wall()
	}
	g.version++
	return nil
}

// clearEdge is the generator's unchecked variant of SetPassage(open)
func (g *Grid) clearEdge(p Point, d Direction) {
	n := p.Step(d)
	g.cells[p.Y*g.Width+p.X] &^= d.Wall()
	g.cells[n.Y*g.Width+n.X] &^= d.Opposite().Wall()
}

// Clone returns a deep copy, used to hand grids to other goroutines
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Width:   g.Width,
		Height:  g.Height,
		cells:   make([]Wall, len(g.cells)),
		version: g.version,
	}
	copy(c.cells, g.cells)
	return c
}

// OpenEdges counts open internal edges, each shared edge once
func (g *Grid) OpenEdges() int {
	n := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if x+1 < g.Width && !g.HasWall(x, y, Right) {
				n++
			}
			if y+1 < g.Height && !g.HasWall(x, y, Forward) {
				n++
			}
		}
	}
	return n
}

// Validate checks shared-edge consistency and the closed outer boundary
func (g *Grid) Validate() error {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			for d := Direction(0); d < DirCount; d++ {
				n, ok := g.Neighbor(x, y, d)
				if !ok {
					if !g.HasWall(x, y, d) {
						return fmt.Errorf("%w: (%d,%d) %s", ErrOpenBoundary, x, y, d)
					}
					continue
				}
				if g.HasWall(x, y, d) != g.HasWall(n.X, n.Y, d.Opposite()) {
					return fmt.Errorf("%w: (%d,%d) %s", ErrInconsistentWall, x, y, d)
				}
			}
		}
	}
	return nil
}

// Connected reports whether every cell is reachable from (0,0) through open edges
func (g *Grid) Connected() bool {
	return g.Reachable(Point{0, 0}) == g.Width*g.Height
}

// Reachable returns the number of cells reachable from start
func (g *Grid) Reachable(start Point) int {
	if !g.InBounds(start.X, start.Y) {
		return 0
	}
	visited := make([]bool, len(g.cells))
	queue := []Point{start}
	visited[start.Y*g.Width+start.X] = true
	count := 0

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		count++

		for d := Direction(0); d < DirCount; d++ {
			if g.HasWall(curr.X, curr.Y, d) {
				continue
			}
			n, ok := g.Neighbor(curr.X, curr.Y, d)
			if !ok || visited[n.Y*g.Width+n.X] {
				continue
			}
			visited[n.Y*g.Width+n.X] = true
			queue = append(queue, n)
		}
	}
	return count
}

// String renders the grid as ASCII with Forward pointing up
func (g *Grid) String() string {
	return g.Render(nil)
}

// Render draws the grid with optional per-cell marks
func (g *Grid) Render(marks map[Point]rune) string {
	var sb strings.Builder
	sb.Grow((g.Width*4 + 2) * (g.Height*2 + 1))

	for y := g.Height - 1; y >= 0; y-- {
		for x := 0; x < g.Width; x++ {
			sb.WriteByte('+')
			if g.HasWall(x, y, Forward) {
				sb.WriteString("---")
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString("+\n")

		for x := 0; x < g.Width; x++ {
			if g.HasWall(x, y, Left) {
				sb.WriteByte('|')
			} else {
				sb.WriteByte(' ')
			}
			sb.WriteByte(' ')
			if r, ok := marks[Point{x, y}]; ok {
				sb.WriteRune(r)
			} else {
				sb.WriteByte(' ')
			}
			sb.WriteByte(' ')
		}
		if g.HasWall(g.Width-1, y, Right) {
			sb.WriteByte('|')
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}

	for x := 0; x < g.Width; x++ {
		sb.WriteByte('+')
		if g.HasWall(x, 0, Back) {
			sb.WriteString("---")
		} else {
			sb.WriteString("   ")
		}
	}
	sb.WriteString("+\n")
	return sb.String()
}
