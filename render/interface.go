package render

import "github.com/gdamore/tcell/v2"

// Canvas is the subset of tcell.Screen the view draws to
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

var _ Canvas = tcell.Screen(nil)
