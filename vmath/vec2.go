package vmath

import (
	"math"
)

// Vec2 is a float64 2D vector on the world ground plane
// X maps to the grid column axis, Y to the grid row axis
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V2Add(a, b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func V2Sub(a, b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func V2Scale(v Vec2, s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func V2Dot(a, b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

func V2MagSq(v Vec2) float64 {
	return v.X*v.X + v.Y*v.Y
}

func V2Mag(v Vec2) float64 {
	return math.Sqrt(V2MagSq(v))
}

// V2Dist returns Euclidean distance between two points
func V2Dist(a, b Vec2) float64 {
	return V2Mag(V2Sub(a, b))
}

// V2DistSq returns the squared distance between a and b
func V2DistSq(a, b Vec2) float64 {
	return V2MagSq(V2Sub(a, b))
}

func V2Normalize(v Vec2) Vec2 {
	mag := V2Mag(v)
	if mag == 0 {
		return Vec2{}
	}
	inv := 1.0 / mag
	return Vec2{v.X * inv, v.Y * inv}
}

// V2Lerp interpolates from a to b, t is not clamped
func V2Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// V2MoveToward steps from a toward b by at most maxStep
// Returns the new position and true when b was reached
func V2MoveToward(a, b Vec2, maxStep float64) (Vec2, bool) {
	d := V2Sub(b, a)
	dist := V2Mag(d)
	if dist <= maxStep || dist == 0 {
		return b, true
	}
	return V2Add(a, V2Scale(d, maxStep/dist)), false
}

// Clamp01 clamps f into [0, 1]
func Clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// SegmentPointDistSq returns squared distance from p to segment ab
// and the segment parameter t in [0,1] of the closest point
func SegmentPointDistSq(a, b, p Vec2) (float64, float64) {
	ab := V2Sub(b, a)
	lenSq := V2MagSq(ab)
	if lenSq == 0 {
		return V2MagSq(V2Sub(p, a)), 0
	}
	t := Clamp01(V2Dot(V2Sub(p, a), ab) / lenSq)
	closest := V2Add(a, V2Scale(ab, t))
	return V2MagSq(V2Sub(p, closest)), t
}
