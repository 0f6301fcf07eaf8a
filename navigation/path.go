package navigation

import (
	"log"

	"github.com/lixenwraith/hushmaze/vmath"
)

// Path is an ordered waypoint route consumed once from the front
// Consumers may drop it at any waypoint; it holds no references into the grid
type Path struct {
	Waypoints []vmath.Vec2
	next      int
}

// NewPath wraps waypoints without copying
func NewPath(waypoints []vmath.Vec2) *Path {
	return &Path{Waypoints: waypoints}
}

// Len returns total waypoint count including consumed ones
func (p *Path) Len() int {
	return len(p.Waypoints)
}

// Peek returns the next unconsumed waypoint
func (p *Path) Peek() (vmath.Vec2, bool) {
	if p == nil || p.next >= len(p.Waypoints) {
		return vmath.Vec2{}, false
	}
	return p.Waypoints[p.next], true
}

// Next consumes and returns the next waypoint
func (p *Path) Next() (vmath.Vec2, bool) {
	wp, ok := p.Peek()
	if ok {
		p.next++
	}
	return wp, ok
}

// Remaining returns the number of unconsumed waypoints
func (p *Path) Remaining() int {
	if p == nil {
		return 0
	}
	return len(p.Waypoints) - p.next
}

// Pending returns a copy of the unconsumed waypoints
func (p *Path) Pending() []vmath.Vec2 {
	if p.Remaining() == 0 {
		return nil
	}
	return append([]vmath.Vec2(nil), p.Waypoints[p.next:]...)
}

// Discard marks every waypoint consumed
func (p *Path) Discard() {
	if p != nil {
		p.next = len(p.Waypoints)
	}
}

// Distance sums segment lengths over the whole path
// Degenerate paths return 0 and log a warning
func (p *Path) Distance() float64 {
	if p == nil || len(p.Waypoints) < 2 {
		log.Printf("navigation: distance requested on path with fewer than 2 waypoints")
		return 0
	}
	return polylineLength(p.Waypoints)
}

// RemainingDistance measures from a live position through the unconsumed waypoints
func (p *Path) RemainingDistance(from vmath.Vec2) float64 {
	if p.Remaining() == 0 {
		return 0
	}
	d := vmath.V2Dist(from, p.Waypoints[p.next])
	return d + polylineLength(p.Waypoints[p.next:])
}

func polylineLength(wps []vmath.Vec2) float64 {
	total := 0.0
	for i := 1; i < len(wps); i++ {
		total += vmath.V2Dist(wps[i-1], wps[i])
	}
	return total
}
