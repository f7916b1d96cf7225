package parallax

import "math"

// Vec2 is a 2-component vector (value type).
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector in v's direction, or zero for a
// degenerate vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Wrap folds v into [-size/2, size/2) on each axis with a non-zero size.
func (v Vec2) Wrap(size Vec2) Vec2 {
	return Vec2{wrap(v.X, size.X), wrap(v.Y, size.Y)}
}

func wrap(x, size float64) float64 {
	if size <= 0 {
		return x
	}
	half := size / 2
	x = math.Mod(x+half, size)
	if x < 0 {
		x += size
	}
	return x - half
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
