package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a 2D vector in simulation space. The origin is the canvas center.
// It converts to and from r2.Vec for the arithmetic.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) r2() r2.Vec { return r2.Vec(v) }

func (v Vec) Add(o Vec) Vec       { return Vec(r2.Add(v.r2(), o.r2())) }
func (v Vec) Sub(o Vec) Vec       { return Vec(r2.Sub(v.r2(), o.r2())) }
func (v Vec) Scale(f float64) Vec { return Vec(r2.Scale(f, v.r2())) }
func (v Vec) Len() float64        { return r2.Norm(v.r2()) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }

// Normalize returns the unit vector in the direction of v, or the zero vector.
func (v Vec) Normalize() Vec {
	if v.Len() == 0 {
		return Vec{}
	}
	return Vec(r2.Unit(v.r2()))
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b Vec) float64 {
	ab := b.Sub(a)
	lenSq := r2.Norm2(ab.r2())
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := r2.Dot(p.Sub(a).r2(), ab.r2()) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}
