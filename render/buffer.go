package render

import "github.com/gdamore/tcell/v2"

// Cell is one composited terminal cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
	Bold bool
}

// Buffer is a compositor with dirty tracking, flushed to a Canvas once per frame
type Buffer struct {
	cells   []Cell
	touched []bool
	width   int
	height  int
}

// NewBuffer creates a buffer with the specified dimensions
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocating only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
		b.touched = make([]bool, size)
	} else {
		b.cells = b.cells[:size]
		b.touched = b.touched[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells to empty using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Fg: RgbText, Bg: RgbBackground}
	b.touched[0] = false
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
	for filled := 1; filled < len(b.touched); filled *= 2 {
		copy(b.touched[filled:], b.touched[:filled])
	}
}

// Bounds returns buffer dimensions
func (b *Buffer) Bounds() (int, int) {
	return b.width, b.height
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at x,y; out of bounds returns the zero cell
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// SetFgOnly writes rune and foreground while preserving the background
func (b *Buffer) SetFgOnly(x, y int, r rune, fg RGB) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	b.cells[idx].Rune = r
	b.cells[idx].Fg = fg
	b.touched[idx] = true
}

// SetBg composites a background color
func (b *Buffer) SetBg(x, y int, bg RGB, mode BlendMode, alpha float64) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	b.cells[idx].Bg = mode.apply(b.cells[idx].Bg, bg, alpha)
	b.touched[idx] = true
}

// SetText writes s left to right from x,y, clipping at the buffer edge
func (b *Buffer) SetText(x, y int, s string, fg RGB) {
	for _, r := range s {
		b.SetFgOnly(x, y, r, fg)
		x++
	}
}

// Touched reports whether anything was drawn at x,y since the last Clear
func (b *Buffer) Touched(x, y int) bool {
	return b.inBounds(x, y) && b.touched[y*b.width+x]
}

// Flush writes cells to canvas at offset ox,oy, clipped to the canvas size
func (b *Buffer) Flush(canvas Canvas, ox, oy int) {
	cw, ch := canvas.Size()
	for y := 0; y < b.height && oy+y < ch; y++ {
		for x := 0; x < b.width && ox+x < cw; x++ {
			c := b.cells[y*b.width+x]
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.Foreground(c.Fg.Color()).Background(c.Bg.Color()).Bold(c.Bold)
			canvas.SetContent(ox+x, oy+y, r, nil, style)
		}
	}
}
