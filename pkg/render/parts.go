package render

import (
	"math"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
)

// Palette colors.
const (
	ColorGround    = "#70ad47"
	ColorRiver     = "#5b9bd5"
	ColorRoofRight = "#c55a11"
	ColorRoofLeft  = "#ed7d31"
	ColorChimney   = "#000000"
	ColorLeaves    = "#548235"
	ColorFruit     = "#ff0000"
	ColorRock      = "#a5a5a5"
	ColorDebug     = "#477992"
)

const (
	// HouseRatio is the roof height to half-width ratio.
	HouseRatio = 1.5

	// circleEdges is the vertex count of canopies, fruits and debug rings.
	circleEdges = 50

	// inset shrinks house and rock outlines inside the placement circle.
	inset = 0.01
)

// fruitOffsets are the fruit centers in units of half a fruit radius,
// before rotation.
var fruitOffsets = []geo.Point2D{
	{X: 1, Y: 1},
	{X: -3, Y: 10},
	{X: -10, Y: -3},
	{X: -3, Y: -10},
	{X: 7, Y: -10},
	{X: 10, Y: 1},
}

// Shape is one filled polygon, or an outline when Outline is set, in
// normalized coordinates.
type Shape struct {
	Kind    string
	Color   string
	Outline bool
	Points  []geo.Point2D
}

// RiverQuad is the corridor rectangle spanning the full canvas height.
func RiverQuad(width float64) Shape {
	h := width / 2
	return Shape{
		Kind:  "river",
		Color: ColorRiver,
		Points: []geo.Point2D{
			{X: h, Y: 1}, {X: -h, Y: 1}, {X: -h, Y: -1}, {X: h, Y: -1},
		},
	}
}

// place rotates a local offset and stretches its Y by aspect.
func place(center, local geo.Point2D, rotation, aspect float64) geo.Point2D {
	v := local.RotateDegrees(rotation)
	return geo.Point2D{X: center.X + v.X, Y: center.Y + v.Y*aspect}
}

func quad(center geo.Point2D, rotation, aspect float64, corners ...geo.Point2D) []geo.Point2D {
	out := make([]geo.Point2D, len(corners))
	for i, c := range corners {
		out[i] = place(center, c, rotation, aspect)
	}
	return out
}

// HouseParts returns the right roof half, the left roof half and the
// chimney. The roof is a rectangle of half-width a and half-height b = p·a
// whose diagonal spans the shrunk diameter.
func HouseParts(e layout.Entity, aspect float64) []Shape {
	r := e.Radius - inset
	a := math.Sqrt((2*r)*(2*r)/(HouseRatio*HouseRatio+1)) / 2
	b := HouseRatio * a
	c, rot := e.Position, e.Rotation

	return []Shape{
		{Kind: "roof", Color: ColorRoofRight, Points: quad(c, rot, aspect,
			geo.Pt(a, b), geo.Pt(0, b), geo.Pt(0, -b), geo.Pt(a, -b))},
		{Kind: "roof", Color: ColorRoofLeft, Points: quad(c, rot, aspect,
			geo.Pt(0, b), geo.Pt(-a, b), geo.Pt(-a, -b), geo.Pt(0, -b))},
		{Kind: "chimney", Color: ColorChimney, Points: quad(c, rot, aspect,
			geo.Pt(-0.25*a, -0.25*b), geo.Pt(-0.75*a, -0.25*b),
			geo.Pt(-0.75*a, -0.75*b), geo.Pt(-0.25*a, -0.75*b))},
	}
}

// TreeParts returns the canopy followed by six fruits. Fruit offsets are
// rotated but not aspect-stretched; only the fruit circles are.
func TreeParts(e layout.Entity, aspect float64) []Shape {
	parts := []Shape{{
		Kind:   "canopy",
		Color:  ColorLeaves,
		Points: geo.Circle(e.Position, e.Radius/1.5, circleEdges, aspect),
	}}

	fr := e.Radius / 15
	step := fr / 2
	for _, off := range fruitOffsets {
		v := off.Scale(step).RotateDegrees(e.Rotation)
		parts = append(parts, Shape{
			Kind:   "fruit",
			Color:  ColorFruit,
			Points: geo.Circle(e.Position.Add(v), fr, circleEdges, aspect),
		})
	}
	return parts
}

// RockParts replays the stored outline. A rock without one, such as a
// hand-edited document, falls back to the fixed silhouette.
func RockParts(e layout.Entity, aspect float64) []Shape {
	pts := e.Geometry
	if len(pts) == 0 {
		r := e.Radius
		if r > inset {
			r -= inset
		}
		pts = geo.RockSilhouette(e.Position, r, e.Rotation, aspect)
	}
	return []Shape{{Kind: "rock", Color: ColorRock, Points: pts}}
}

// DebugRing is the placement circle outline.
func DebugRing(e layout.Entity, aspect float64) Shape {
	return Shape{
		Kind:    "debug",
		Color:   ColorDebug,
		Outline: true,
		Points:  geo.Circle(e.Position, e.Radius, circleEdges, aspect),
	}
}

// EntityParts returns every shape of e in draw order.
func EntityParts(e layout.Entity, aspect float64, debug bool) []Shape {
	var parts []Shape
	if debug {
		parts = append(parts, DebugRing(e, aspect))
	}
	switch e.Type {
	case layout.EntityHouse:
		parts = append(parts, HouseParts(e, aspect)...)
	case layout.EntityRock:
		parts = append(parts, RockParts(e, aspect)...)
	case layout.EntityTree:
		parts = append(parts, TreeParts(e, aspect)...)
	}
	return parts
}

// SceneParts returns the river and every entity's shapes, houses first,
// then rocks, then trees.
func SceneParts(s *layout.Scene, aspect float64, debug bool) []Shape {
	parts := []Shape{RiverQuad(s.River.Width)}
	for _, t := range layout.EntityTypes {
		for _, e := range s.OfType(t) {
			parts = append(parts, EntityParts(e, aspect, debug)...)
		}
	}
	return parts
}
