package geo

import "math"

// RandSource is the random stream consumed by the randomized shapes.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
}

// rockStep is the angular sample spacing of RockSilhouette (18 vertices).
const rockStep = 20

// ellipsePoint returns center + (rx·cos θ, ry·sin θ·aspect) for θ in degrees.
// Aspect stretches Y after rotation, so rotated shapes foreshorten when the
// canvas is not square.
func ellipsePoint(center Point2D, rx, ry, deg, aspect float64) Point2D {
	t := Radians(deg)
	return Point2D{
		X: center.X + rx*math.Cos(t),
		Y: center.Y + ry*math.Sin(t)*aspect,
	}
}

// RegularPolygon samples an ellipse at edges equal angular steps starting at
// rotation degrees. The result always has exactly edges vertices; edges < 1
// yields nil.
func RegularPolygon(center Point2D, rx, ry float64, edges int, rotation, aspect float64) []Point2D {
	if edges < 1 {
		return nil
	}
	step := 360.0 / float64(edges)
	vertices := make([]Point2D, 0, edges)
	for i := 0; i < edges; i++ {
		vertices = append(vertices, ellipsePoint(center, rx, ry, float64(i)*step+rotation, aspect))
	}
	return vertices
}

// Circle is RegularPolygon with equal radii.
func Circle(center Point2D, r float64, edges int, aspect float64) []Point2D {
	return RegularPolygon(center, r, r, edges, 0, aspect)
}

// RockSilhouette returns the fixed jagged 18-vertex rock outline. Samples past
// 180° are pushed forward 20°, samples in (70°, 180°) stay on the circle, and
// the remaining samples shear X back 10° while Y runs 20° ahead.
func RockSilhouette(center Point2D, r, rotation, aspect float64) []Point2D {
	vertices := make([]Point2D, 0, 360/rockStep)
	for i := 0; i < 360; i += rockStep {
		deg := float64(i)
		var xDeg, yDeg float64
		switch {
		case i > 180:
			xDeg, yDeg = deg+20, deg+20
		case i > 70 && i < 180:
			xDeg, yDeg = deg, deg
		default:
			xDeg, yDeg = deg-10, deg+20
		}
		vertices = append(vertices, Point2D{
			X: center.X + r*math.Cos(Radians(xDeg+rotation)),
			Y: center.Y + r*math.Sin(Radians(yDeg+rotation))*aspect,
		})
	}
	return vertices
}

// RandomPolygonArcs partitions 360° into edges arcs. The first edges-1 arcs
// are drawn uniformly from [maxStep/2, maxStep) where maxStep = 360/edges and
// the last arc takes the remainder, so the arcs always sum to 360.
func RandomPolygonArcs(rng RandSource, edges int) []float64 {
	if edges < 1 {
		return nil
	}
	maxStep := 360.0 / float64(edges)
	arcs := make([]float64, edges)
	total := 0.0
	for i := 0; i < edges-1; i++ {
		arcs[i] = maxStep/2 + rng.Float64()*(maxStep/2)
		total += arcs[i]
	}
	arcs[edges-1] = 360 - total
	return arcs
}

// RandomPolygon builds an irregular polygon whose vertices sit at the running
// sum of RandomPolygonArcs. The final vertex lands on exactly 360°.
func RandomPolygon(rng RandSource, center Point2D, r float64, edges int, rotation, aspect float64) []Point2D {
	arcs := RandomPolygonArcs(rng, edges)
	if arcs == nil {
		return nil
	}
	vertices := make([]Point2D, 0, edges)
	angle := 0.0
	for i, arc := range arcs {
		if i == len(arcs)-1 {
			angle = 360
		} else {
			angle += arc
		}
		vertices = append(vertices, ellipsePoint(center, r, r, angle+rotation, aspect))
	}
	return vertices
}
