package tonefx

import "math"

// Point is a 2-D coordinate in normalized [0,1]^2 space, used by filters
// whose parameters are resolution-independent (Vignette.Center).
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Length returns the Euclidean length of the vector from the origin to p.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Clamp01 restricts both coordinates to [0, 1], the valid range for a
// Vignette center per the filter's invariant.
func (p Point) Clamp01() Point {
	return Point{X: clamp01(p.X), Y: clamp01(p.Y)}
}
