package render

import (
	"fmt"
	"math"

	"github.com/lixenwraith/hushmaze/level"
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Each maze cell takes cellCols x cellRows characters, matching maze.Grid.Render
const (
	cellCols = 4
	cellRows = 2
)

// Glyphs
const (
	glyphCorner   = '+'
	glyphHWall    = '-'
	glyphVWall    = '|'
	glyphPlayer   = '@'
	glyphExit     = 'E'
	glyphWaypoint = '·'
)

// View draws level snapshots with Forward pointing up
type View struct {
	buf        *Buffer
	ShowStatus bool
}

// NewView creates a view with the status line enabled
func NewView() *View {
	return &View{buf: NewBuffer(0, 0), ShowStatus: true}
}

// MapSize returns the character size of g as drawn by the view
func MapSize(g *maze.Grid) (int, int) {
	return g.Width*cellCols + 1, g.Height*cellRows + 1
}

// projection maps world units to character cells
type projection struct {
	cellSize float64
	height   int // Grid rows
}

func (p projection) toScreen(v vmath.Vec2) (int, int) {
	col := math.Round(v.X / p.cellSize * cellCols)
	row := math.Round((float64(p.height) - v.Y/p.cellSize) * cellRows)
	return int(col), int(row)
}

func (p projection) toWorld(col, row int) vmath.Vec2 {
	return vmath.Vec2{
		X: float64(col) / cellCols * p.cellSize,
		Y: (float64(p.height) - float64(row)/cellRows) * p.cellSize,
	}
}

// Draw composites snap and flushes it to canvas
func (v *View) Draw(canvas Canvas, snap level.Snapshot) {
	g := snap.Grid
	if g == nil || snap.CellSize <= 0 {
		return
	}
	w, h := MapSize(g)
	if v.ShowStatus {
		v.buf.Resize(w, h+1)
	} else {
		v.buf.Resize(w, h)
	}
	p := projection{cellSize: snap.CellSize, height: g.Height}

	v.drawRipples(snap, p)
	v.drawWalls(g)
	v.drawPaths(snap, p)

	ex, ey := p.toScreen(vmath.Vec2{
		X: (float64(snap.Exit.X) + 0.5) * snap.CellSize,
		Y: (float64(snap.Exit.Y) + 0.5) * snap.CellSize,
	})
	v.buf.SetFgOnly(ex, ey, glyphExit, RgbExit)

	for _, a := range snap.Agents {
		st := StyleFor(a.Species)
		x, y := p.toScreen(a.Position)
		v.buf.SetFgOnly(x, y, st.Glyph, st.Color)
	}

	px, py := p.toScreen(snap.Player)
	v.buf.SetFgOnly(px, py, glyphPlayer, RgbPlayer)
	if px >= 0 && py >= 0 && px < w && py < h {
		v.buf.cells[py*v.buf.width+px].Bold = true
	}

	if v.ShowStatus {
		status := fmt.Sprintf("frame %d  t=%.1fs  exit %d  sounds %d  stalkers %d",
			snap.Frame, snap.Elapsed, snap.ExitDist, len(snap.Sounds), len(snap.Agents))
		v.buf.SetText(0, h, status, RgbStatusBar)
	}

	v.buf.Flush(canvas, 0, 0)
}

// Buffer exposes the last composited frame
func (v *View) Buffer() *Buffer {
	return v.buf
}

// drawRipples tints a ring one column wide at each sound's current radius
func (v *View) drawRipples(snap level.Snapshot, p projection) {
	ring := p.cellSize / cellCols
	for _, s := range snap.Sounds {
		if s.Alpha <= 0 || s.Radius <= 0 {
			continue
		}
		color := RgbText
		if c, err := sound.ParseCategory(s.Category); err == nil {
			color = RippleColors[c]
		}

		reach := s.Radius + ring
		c0, r0 := p.toScreen(vmath.Vec2{X: s.Position.X - reach, Y: s.Position.Y + reach})
		c1, r1 := p.toScreen(vmath.Vec2{X: s.Position.X + reach, Y: s.Position.Y - reach})
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				d := vmath.V2Dist(p.toWorld(col, row), s.Position)
				if math.Abs(d-s.Radius) <= ring {
					v.buf.SetBg(col, row, color, BlendAdd, s.Alpha)
				}
			}
		}
	}
}

// drawWalls lays out walls exactly as maze.Grid.Render does
func (v *View) drawWalls(g *maze.Grid) {
	for y := 0; y < g.Height; y++ {
		top := (g.Height - 1 - y) * cellRows
		for x := 0; x < g.Width; x++ {
			left := x * cellCols
			v.buf.SetFgOnly(left, top, glyphCorner, RgbWall)
			if g.HasWall(x, y, maze.Forward) {
				for i := 1; i < cellCols; i++ {
					v.buf.SetFgOnly(left+i, top, glyphHWall, RgbWall)
				}
			}
			if g.HasWall(x, y, maze.Left) {
				v.buf.SetFgOnly(left, top+1, glyphVWall, RgbWall)
			}
		}
		v.buf.SetFgOnly(g.Width*cellCols, top, glyphCorner, RgbWall)
		if g.HasWall(g.Width-1, y, maze.Right) {
			v.buf.SetFgOnly(g.Width*cellCols, top+1, glyphVWall, RgbWall)
		}
	}

	bottom := g.Height * cellRows
	for x := 0; x < g.Width; x++ {
		left := x * cellCols
		v.buf.SetFgOnly(left, bottom, glyphCorner, RgbWall)
		if g.HasWall(x, 0, maze.Back) {
			for i := 1; i < cellCols; i++ {
				v.buf.SetFgOnly(left+i, bottom, glyphHWall, RgbWall)
			}
		}
	}
	v.buf.SetFgOnly(g.Width*cellCols, bottom, glyphCorner, RgbWall)
}

// drawPaths marks pending agent waypoints dimmed, then guide waypoints, without covering walls
func (v *View) drawPaths(snap level.Snapshot, p projection) {
	for _, a := range snap.Agents {
		color := StyleFor(a.Species).Color.Scale(0.5)
		for _, wp := range a.Path {
			v.dot(p, wp, color)
		}
	}
	for _, wp := range snap.Guide {
		v.dot(p, wp, RgbGuide)
	}
}

func (v *View) dot(p projection, wp vmath.Vec2, color RGB) {
	x, y := p.toScreen(wp)
	if r := v.buf.Get(x, y).Rune; r == 0 || r == glyphWaypoint {
		v.buf.SetFgOnly(x, y, glyphWaypoint, color)
	}
}
