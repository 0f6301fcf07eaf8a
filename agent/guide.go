package agent

import (
	"github.com/lixenwraith/hushmaze/navigation"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Guide points the player along a path one waypoint at a time
type Guide struct {
	path       *navigation.Path
	arriveDist float64
	heading    vmath.Vec2
}

// NewGuide creates a guide that advances once the player is within arriveDist of a waypoint
func NewGuide(arriveDist float64) *Guide {
	return &Guide{arriveDist: arriveDist}
}

// SetPath replaces the followed path, discarding the previous one
func (g *Guide) SetPath(p *navigation.Path) {
	g.path.Discard()
	g.path = p
	g.heading = vmath.Vec2{}
}

// Discard drops the path at the current waypoint
func (g *Guide) Discard() {
	g.path.Discard()
	g.path = nil
	g.heading = vmath.Vec2{}
}

// Active reports whether waypoints remain
func (g *Guide) Active() bool {
	return g.path.Remaining() > 0
}

// Update consumes reached waypoints and returns the unit heading to the next one
// ok is false once the path is exhausted
func (g *Guide) Update(player vmath.Vec2) (heading vmath.Vec2, ok bool) {
	for {
		wp, more := g.path.Peek()
		if !more {
			g.heading = vmath.Vec2{}
			return g.heading, false
		}
		if vmath.V2Dist(player, wp) > g.arriveDist {
			g.heading = vmath.V2Normalize(vmath.V2Sub(wp, player))
			return g.heading, true
		}
		g.path.Next()
	}
}

// Heading returns the last computed heading
func (g *Guide) Heading() vmath.Vec2 {
	return g.heading
}

// Path returns the followed path, nil when none
func (g *Guide) Path() *navigation.Path {
	return g.path
}

// Target returns the next waypoint
func (g *Guide) Target() (vmath.Vec2, bool) {
	return g.path.Peek()
}
