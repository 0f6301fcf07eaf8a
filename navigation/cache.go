package navigation

import (
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/vmath"
)

// PathCache manages per-agent path recomputation with throttling
type PathCache struct {
	Path *Path
	Err  error // Last search error, ErrNoPath after a failed search

	// Recomputation throttling
	LastTarget             maze.Point // Target cell of the current path
	TicksSinceCompute      int        // Ticks since last computation
	MinTicksBetweenCompute int        // Minimum ticks between recomputes
	DirtyDistance          int        // Target must move this many cells to trigger immediate recompute

	// PendingUpdate latches true on any state change, cleared after compute
	PendingUpdate bool
	hasTarget     bool
}

// NewPathCache creates a cache with the given throttling
func NewPathCache(minTicks, dirtyDist int) *PathCache {
	return &PathCache{
		TicksSinceCompute:      minTicks, // Allow immediate first compute
		MinTicksBetweenCompute: minTicks,
		DirtyDistance:          dirtyDist,
		PendingUpdate:          true, // Force initial compute
	}
}

// Update checks if recomputation is needed and performs it
// Returns true if a search ran this tick
func (c *PathCache) Update(f *PathFinder, from, target vmath.Vec2, radius float64) bool {
	return c.UpdateToTarget(f, from, target, radius, NoCollider, NoCollider)
}

// UpdateToTarget is Update for a pursuer: a clear line to the targetID collider yields a direct two-point path
func (c *PathCache) UpdateToTarget(f *PathFinder, from, target vmath.Vec2, radius float64, self, targetID ColliderID) bool {
	c.TicksSinceCompute++

	tc := f.Mapper().CellOf(target)
	if !c.hasTarget || manhattan(tc, c.LastTarget) >= c.DirtyDistance {
		c.PendingUpdate = true
		c.TicksSinceCompute = max(c.TicksSinceCompute, c.MinTicksBetweenCompute)
	}

	if !c.PendingUpdate || c.TicksSinceCompute < c.MinTicksBetweenCompute {
		return false
	}

	c.Path, c.Err = f.FindPathToTarget(from, target, radius, self, targetID)
	c.LastTarget = tc
	c.hasTarget = true
	c.TicksSinceCompute = 0
	// Failed searches retry after the throttle window
	c.PendingUpdate = c.Err != nil
	return true
}

// MarkDirty forces recomputation on next eligible tick
func (c *PathCache) MarkDirty() {
	c.PendingUpdate = true
}

// Reset drops the cached path and target
func (c *PathCache) Reset() {
	c.Path.Discard()
	c.Path = nil
	c.Err = nil
	c.hasTarget = false
	c.PendingUpdate = true
	c.TicksSinceCompute = c.MinTicksBetweenCompute
}
