package textpath

import (
	"fmt"
	"math"
)

// Point is a position in the drawing plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Lerp linearly interpolates between p and q. t outside [0, 1] extrapolates.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + t*(q.X-p.X),
		Y: p.Y + t*(q.Y-p.Y),
	}
}

// Scale multiplies both coordinates by f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Path is a polyline; consecutive points define straight segments.
type Path []Point

// Length returns the total arc length of the path.
func (p Path) Length() float64 {
	var length float64
	for i := 1; i < len(p); i++ {
		length += p[i-1].Distance(p[i])
	}
	return length
}

// Reversed reports whether the path runs from right to left.
func (p Path) Reversed() bool {
	if len(p) < 2 {
		return false
	}
	return p[0].X > p[len(p)-1].X
}

// Scale returns a copy of the path with every point scaled by f around the origin.
func (p Path) Scale(f float64) Path {
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = pt.Scale(f)
	}
	return out
}
