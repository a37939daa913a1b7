// Package geom holds the 2D math used by shapes, tools and the viewport:
// vectors, axis-aligned bounds, intersections and polygon helpers.
package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a point or offset in page or screen space.
// It is encoded as a two-element JSON array.
type Vec r2.Vec

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) r2() r2.Vec { return r2.Vec(v) }

func (v Vec) Add(o Vec) Vec       { return Vec(r2.Add(v.r2(), o.r2())) }
func (v Vec) Sub(o Vec) Vec       { return Vec(r2.Sub(v.r2(), o.r2())) }
func (v Vec) Mul(f float64) Vec   { return Vec(r2.Scale(f, v.r2())) }
func (v Vec) Div(f float64) Vec   { return Vec(r2.Scale(1/f, v.r2())) }
func (v Vec) Neg() Vec            { return Vec{X: -v.X, Y: -v.Y} }
func (v Vec) Dot(o Vec) float64   { return r2.Dot(v.r2(), o.r2()) }
func (v Vec) Cross(o Vec) float64 { return r2.Cross(v.r2(), o.r2()) }
func (v Vec) Len() float64        { return r2.Norm(v.r2()) }
func (v Vec) Len2() float64       { return r2.Norm2(v.r2()) }
func (v Vec) Abs() Vec            { return Vec{X: math.Abs(v.X), Y: math.Abs(v.Y)} }

// MulV multiplies component-wise.
func (v Vec) MulV(o Vec) Vec { return Vec{X: v.X * o.X, Y: v.Y * o.Y} }

// DivV divides component-wise.
func (v Vec) DivV(o Vec) Vec { return Vec{X: v.X / o.X, Y: v.Y / o.Y} }

// Dist is the euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Dist2 is the squared distance between v and o.
func (v Vec) Dist2(o Vec) float64 { return v.Sub(o).Len2() }

// Uni returns the unit vector, or the zero vector for a zero input.
func (v Vec) Uni() Vec {
	if v.X == 0 && v.Y == 0 {
		return Vec{}
	}
	return Vec(r2.Unit(v.r2()))
}

// Per returns the perpendicular (rotated a quarter turn clockwise in screen space).
func (v Vec) Per() Vec { return Vec{X: v.Y, Y: -v.X} }

// Rot rotates v about the origin.
func (v Vec) Rot(r float64) Vec {
	if r == 0 {
		return v
	}
	return Vec(r2.Rotate(v.r2(), r, r2.Vec{}))
}

// RotWith rotates v about center c.
func (v Vec) RotWith(c Vec, r float64) Vec {
	if r == 0 {
		return v
	}
	return Vec(r2.Rotate(v.r2(), r, c.r2()))
}

// Lrp interpolates between v and o by t.
func (v Vec) Lrp(o Vec, t float64) Vec { return v.Add(o.Sub(v).Mul(t)) }

// Med is the midpoint of v and o.
func (v Vec) Med(o Vec) Vec { return v.Lrp(o, 0.5) }

// Angle is the angle of the segment v→o.
func (v Vec) Angle(o Vec) float64 { return math.Atan2(o.Y-v.Y, o.X-v.X) }

func (v Vec) Round() Vec { return Vec{X: math.Round(v.X), Y: math.Round(v.Y)} }

// ToFixed rounds both components to two decimal places.
func (v Vec) ToFixed() Vec {
	return Vec{X: math.Round(v.X*100) / 100, Y: math.Round(v.Y*100) / 100}
}

// IsEqual compares exactly.
func (v Vec) IsEqual(o Vec) bool { return v.X == o.X && v.Y == o.Y }

// Snap rounds each component to the nearest multiple of step.
func (v Vec) Snap(step float64) Vec {
	return Vec{X: math.Round(v.X/step) * step, Y: math.Round(v.Y/step) * step}
}

// NearestPointOnLineSegment projects p onto segment a-b. With clamp false the
// projection runs along the infinite line.
func NearestPointOnLineSegment(a, b, p Vec, clamp bool) Vec {
	u := b.Sub(a).Uni()
	c := a.Add(u.Mul(p.Sub(a).Dot(u)))
	if clamp {
		if c.X < math.Min(a.X, b.X) {
			if a.X < b.X {
				return a
			}
			return b
		}
		if c.X > math.Max(a.X, b.X) {
			if a.X > b.X {
				return a
			}
			return b
		}
		if c.Y < math.Min(a.Y, b.Y) {
			if a.Y < b.Y {
				return a
			}
			return b
		}
		if c.Y > math.Max(a.Y, b.Y) {
			if a.Y > b.Y {
				return a
			}
			return b
		}
	}
	return c
}

// DistanceToLineSegment is the distance from p to the segment a-b.
func DistanceToLineSegment(a, b, p Vec) float64 {
	return p.Dist(NearestPointOnLineSegment(a, b, p, true))
}

// PointsCentroid is the arithmetic mean of points.
func PointsCentroid(points []Vec) Vec {
	if len(points) == 0 {
		return Vec{}
	}
	var c Vec
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Div(float64(len(points)))
}

func (v Vec) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.X, v.Y})
}

// UnmarshalJSON accepts [x, y] and ignores trailing elements such as pressure.
func (v *Vec) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode vec: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("decode vec: expected at least 2 components, got %d", len(raw))
	}
	v.X, v.Y = raw[0], raw[1]
	return nil
}

func (v Vec) String() string { return fmt.Sprintf("[%g,%g]", v.X, v.Y) }
