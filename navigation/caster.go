package navigation

import (
	"math"

	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/vmath"
)

// ColliderID identifies a disc collider registered with a caster, 0 is reserved for walls
type ColliderID uint32

const NoCollider ColliderID = 0

// Hit describes the first obstruction met by a swept capsule
type Hit struct {
	Point    vmath.Vec2 // Capsule center at contact
	Distance float64    // Distance travelled along the segment
	Collider ColliderID // NoCollider for wall geometry
}

// CapsuleCaster sweeps a disc of radius from one point to another against world geometry
// ignore excludes one collider, typically the caster's own body
type CapsuleCaster interface {
	CapsuleCast(from, to vmath.Vec2, radius float64, ignore ColliderID) (Hit, bool)
}

type disc struct {
	center vmath.Vec2
	radius float64
}

type aabb struct {
	minX, minY, maxX, maxY float64
}

// GridCaster casts against maze wall slabs and registered agent discs
// Each cell wall is a slab of 2*edgeThickness centered on the cell boundary
type GridCaster struct {
	grid          *maze.Grid
	mapper        Mapper
	edgeThickness float64
	colliders     map[ColliderID]disc
}

// NewGridCaster creates a caster reading walls from grid
func NewGridCaster(grid *maze.Grid, mapper Mapper, edgeThickness float64) *GridCaster {
	return &GridCaster{
		grid:          grid,
		mapper:        mapper,
		edgeThickness: edgeThickness,
		colliders:     make(map[ColliderID]disc),
	}
}

// SetCollider registers or moves a disc collider
func (c *GridCaster) SetCollider(id ColliderID, center vmath.Vec2, radius float64) {
	if id == NoCollider {
		return
	}
	c.colliders[id] = disc{center: center, radius: radius}
}

// RemoveCollider unregisters a collider
func (c *GridCaster) RemoveCollider(id ColliderID) {
	delete(c.colliders, id)
}

// CapsuleCast returns the nearest obstruction along from→to
func (c *GridCaster) CapsuleCast(from, to vmath.Vec2, radius float64, ignore ColliderID) (Hit, bool) {
	delta := vmath.V2Sub(to, from)
	length := vmath.V2Mag(delta)
	dir := vmath.V2Normalize(delta)

	best := math.Inf(1)
	bestID := NoCollider

	// Broad phase: cells overlapping the swept bounds, padded by one cell for neighbor walls
	pad := radius + c.mapper.CellSize
	lo := c.mapper.CellOf(vmath.Vec2{X: math.Min(from.X, to.X) - pad, Y: math.Min(from.Y, to.Y) - pad})
	hi := c.mapper.CellOf(vmath.Vec2{X: math.Max(from.X, to.X) + pad, Y: math.Max(from.Y, to.Y) + pad})
	lo.X, lo.Y = max(lo.X, 0), max(lo.Y, 0)
	hi.X, hi.Y = min(hi.X, c.grid.Width-1), min(hi.Y, c.grid.Height-1)

	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			for d := maze.Direction(0); d < maze.DirCount; d++ {
				if !c.grid.HasWall(x, y, d) {
					continue
				}
				box := c.wallBox(maze.Point{X: x, Y: y}, d)
				box.minX -= radius
				box.minY -= radius
				box.maxX += radius
				box.maxY += radius
				if t, ok := segmentBox(from, dir, length, box); ok && t < best {
					best = t
					bestID = NoCollider
				}
			}
		}
	}

	for id, col := range c.colliders {
		if id == ignore {
			continue
		}
		if t, ok := segmentCircle(from, dir, length, col.center, col.radius+radius); ok && t < best {
			best = t
			bestID = id
		}
	}

	if math.IsInf(best, 1) {
		return Hit{}, false
	}
	return Hit{
		Point:    vmath.V2Add(from, vmath.V2Scale(dir, best)),
		Distance: best,
		Collider: bestID,
	}, true
}

// wallBox returns the slab for edge d of cell, extended over the corner posts
func (c *GridCaster) wallBox(cell maze.Point, d maze.Direction) aabb {
	cs := c.mapper.CellSize
	e := c.edgeThickness
	o := c.mapper.CellMin(cell)

	switch d {
	case maze.Right:
		return aabb{o.X + cs - e, o.Y - e, o.X + cs + e, o.Y + cs + e}
	case maze.Left:
		return aabb{o.X - e, o.Y - e, o.X + e, o.Y + cs + e}
	case maze.Forward:
		return aabb{o.X - e, o.Y + cs - e, o.X + cs + e, o.Y + cs + e}
	default:
		return aabb{o.X - e, o.Y - e, o.X + cs + e, o.Y + e}
	}
}

// touchEps absorbs rounding when a cast starts exactly on a surface it stopped at
const touchEps = 1e-9

// Outward normals of the box faces in startInBox depth order
var boxNormals = [4]vmath.Vec2{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// startInBox reports whether from lies in or on b, and if so whether dir pushes through its nearest face
// Moving out of or along the nearest face is free so bodies resting on a wall can slide and back off
func startInBox(from, dir vmath.Vec2, b aabb) (inside, blocked bool) {
	if from.X < b.minX-touchEps || from.X > b.maxX+touchEps || from.Y < b.minY-touchEps || from.Y > b.maxY+touchEps {
		return false, false
	}
	depths := [4]float64{from.X - b.minX, b.maxX - from.X, from.Y - b.minY, b.maxY - from.Y}
	shallow := min(depths[0], depths[1], depths[2], depths[3])
	for i, d := range depths {
		if d <= shallow+touchEps && vmath.V2Dot(dir, boxNormals[i]) < 0 {
			return true, true
		}
	}
	return true, false
}

// segmentBox returns entry distance of the ray segment into box
// A start in or on the box hits at 0 only when heading deeper
func segmentBox(from, dir vmath.Vec2, length float64, b aabb) (float64, bool) {
	if inside, blocked := startInBox(from, dir, b); inside {
		return 0, blocked
	}

	tMin, tMax := 0.0, length

	origin := [2]float64{from.X, from.Y}
	d := [2]float64{dir.X, dir.Y}
	lo := [2]float64{b.minX, b.minY}
	hi := [2]float64{b.maxX, b.maxY}

	for axis := 0; axis < 2; axis++ {
		if math.Abs(d[axis]) < 1e-12 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// segmentCircle returns the first contact distance with a circle
// A start in or on the circle hits at 0 unless heading out or along it; the exact center always hits
func segmentCircle(from, dir vmath.Vec2, length float64, center vmath.Vec2, r float64) (float64, bool) {
	m := vmath.V2Sub(from, center)
	c := vmath.V2MagSq(m) - r*r
	b := vmath.V2Dot(m, dir)
	if c <= touchEps {
		if vmath.V2MagSq(m) > touchEps && b >= 0 {
			return 0, false
		}
		return 0, true
	}
	if length == 0 {
		return 0, false
	}
	if b > 0 {
		return 0, false // Moving away
	}
	discr := b*b - c
	if discr < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(discr)
	if t < 0 || t > length {
		return 0, false
	}
	return t, true
}
