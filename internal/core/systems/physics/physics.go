package physics

import "math"

// Vec2 is a 2D world-space vector. Units are world units; the Y axis points up.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V2 is a shorthand constructor.
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2    { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) LenSq() float64          { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Distance(o Vec2) float64 { return Distance2(v.X, v.Y, o.X, o.Y) }
func (v Vec2) DistanceSq(o Vec2) float64 {
	dx, dy := o.X-v.X, o.Y-v.Y
	return dx*dx + dy*dy
}

// Normalize returns the unit vector in the direction of v. The second result
// is false when v has (near) zero length, in which case the zero vector is
// returned and callers are expected to hold position.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Angle is the bearing of v in radians, atan2(y, x).
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Clamp limits v to the axis-aligned box [lo, hi].
func (v Vec2) Clamp(lo, hi Vec2) Vec2 {
	return Vec2{clamp(v.X, lo.X, hi.X), clamp(v.Y, lo.Y, hi.Y)}
}

// FromAngle returns the unit vector for a bearing in radians.
func FromAngle(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{c, s}
}

// StepToward moves from toward target by at most step units, landing on
// target instead of overshooting it. It returns from unchanged when the two
// points coincide.
func StepToward(from, target Vec2, step float64) Vec2 {
	d := target.Sub(from)
	dir, ok := d.Normalize()
	if !ok {
		return from
	}
	if d.Len() <= step {
		return target
	}
	return from.Add(dir.Scale(step))
}

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
