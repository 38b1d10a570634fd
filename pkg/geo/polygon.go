package geo

import "math"

// Polygon is a closed outline defined by its vertices in order.
type Polygon struct {
	Vertices []Point2D
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Vertices: pts}
}

// PolygonFromPairs builds a polygon from [x, y] pairs as stored in saved
// documents.
func PolygonFromPairs(pairs [][2]float64) Polygon {
	pts := make([]Point2D, len(pairs))
	for i, c := range pairs {
		pts[i] = Point2D{X: c[0], Y: c[1]}
	}
	return Polygon{Vertices: pts}
}

// Pairs returns the vertices as [x, y] pairs.
func (p Polygon) Pairs() [][2]float64 {
	out := make([][2]float64, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = [2]float64{v.X, v.Y}
	}
	return out
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.Vertices) < 3
}

// SignedArea returns the signed area using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].X * p.Vertices[j].Y
		area -= p.Vertices[j].X * p.Vertices[i].Y
	}
	return area / 2
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Reach returns the largest aspect-corrected distance from center to any
// vertex. For an outline drawn with the same aspect it is the radius of the
// circle the outline was sampled from.
func (p Polygon) Reach(center Point2D, aspect float64) float64 {
	reach := 0.0
	for _, v := range p.Vertices {
		if d := v.AspectDistance(center, aspect); d > reach {
			reach = d
		}
	}
	return reach
}
