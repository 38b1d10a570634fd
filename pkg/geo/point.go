package geo

import "math"

// Point2D is a point on the normalized canvas. Both axes conventionally span
// [-1, 1] with Y pointing up.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the zero point.
var Origin = Point2D{0, 0}

// Pt is a shorthand constructor for Point2D.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Y - q.Y}
}

// Scale returns p * s.
func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Y * s}
}

// Length returns the Euclidean length of the vector.
func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance from p to q.
func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// AspectDistance returns the distance from p to q with the Y delta divided
// by aspect. This is the overlap metric used when placing entities.
func (p Point2D) AspectDistance(q Point2D, aspect float64) float64 {
	return math.Hypot(p.X-q.X, (p.Y-q.Y)/aspect)
}

// Rotate returns p rotated by angle radians around the origin.
func (p Point2D) Rotate(angle float64) Point2D {
	c, s := math.Cos(angle), math.Sin(angle)
	return Point2D{
		X: p.X*c - p.Y*s,
		Y: p.X*s + p.Y*c,
	}
}

// RotateDegrees returns p rotated by angle degrees around the origin.
func (p Point2D) RotateDegrees(angle float64) Point2D {
	return p.Rotate(Radians(angle))
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
