package geo

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestRegularPolygonSquare(t *testing.T) {
	c := Pt(0.2, -0.3)
	pts := RegularPolygon(c, 0.5, 0.5, 4, 0, 1)
	if len(pts) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(pts))
	}
	want := []Point2D{Pt(0.7, -0.3), Pt(0.2, 0.2), Pt(-0.3, -0.3), Pt(0.2, -0.8)}
	for i, p := range pts {
		if !approxEqual(p.Distance(c), 0.5, 1e-9) {
			t.Errorf("vertex %d at distance %f, want 0.5", i, p.Distance(c))
		}
		if !approxEqual(p.X, want[i].X, 1e-9) || !approxEqual(p.Y, want[i].Y, 1e-9) {
			t.Errorf("vertex %d = (%f,%f), want (%f,%f)", i, p.X, p.Y, want[i].X, want[i].Y)
		}
	}
}

func TestRegularPolygonLengthMatchesEdges(t *testing.T) {
	for _, n := range []int{1, 3, 7, 11, 50, 100} {
		if got := len(RegularPolygon(Origin, 1, 1, n, 33, 1.5)); got != n {
			t.Errorf("edges=%d: got %d vertices", n, got)
		}
	}
	if pts := RegularPolygon(Origin, 1, 1, 0, 0, 1); pts != nil {
		t.Errorf("expected nil for zero edges, got %d vertices", len(pts))
	}
}

func TestRegularPolygonAspectStretchesY(t *testing.T) {
	pts := RegularPolygon(Origin, 1, 1, 4, 0, 2)
	// Vertex 1 sits at 90°, so its Y is stretched by aspect.
	if !approxEqual(pts[1].Y, 2, 1e-9) {
		t.Errorf("expected stretched Y 2, got %f", pts[1].Y)
	}
	if !approxEqual(pts[0].X, 1, 1e-9) {
		t.Errorf("expected X unaffected by aspect, got %f", pts[0].X)
	}
}

func TestCircleArea(t *testing.T) {
	circle := NewPolygon(Circle(Origin, 100, 128, 1)...)
	expectedArea := math.Pi * 100 * 100
	if !approxEqual(circle.Area(), expectedArea, expectedArea*0.001) {
		t.Errorf("expected circle area ~%f, got %f", expectedArea, circle.Area())
	}
}

func TestRockSilhouette(t *testing.T) {
	c := Pt(0.5, 0.5)
	pts := RockSilhouette(c, 0.1, 0, 1)
	if len(pts) != 18 {
		t.Fatalf("expected 18 vertices, got %d", len(pts))
	}
	// 0° falls in the sheared band: X at -10°, Y at +20°.
	if !approxEqual(pts[0].X, c.X+0.1*math.Cos(Radians(-10)), 1e-12) ||
		!approxEqual(pts[0].Y, c.Y+0.1*math.Sin(Radians(20)), 1e-12) {
		t.Errorf("vertex 0 = (%f,%f), unexpected", pts[0].X, pts[0].Y)
	}
	// 100° lies on the plain circle.
	if !approxEqual(pts[5].Distance(c), 0.1, 1e-12) {
		t.Errorf("vertex 5 should sit on the circle, distance %f", pts[5].Distance(c))
	}
	// 200° is pushed forward to 220°.
	if !approxEqual(pts[10].X, c.X+0.1*math.Cos(Radians(220)), 1e-12) {
		t.Errorf("vertex 10 X = %f, unexpected", pts[10].X)
	}
}

func TestRockSilhouetteDeterministic(t *testing.T) {
	a := RockSilhouette(Pt(0.1, 0.2), 0.05, 45, 1.3)
	b := RockSilhouette(Pt(0.1, 0.2), 0.05, 45, 1.3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vertex %d differs between calls", i)
		}
	}
}

func TestRandomPolygonArcsClose(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
		edges := 3 + int(seed%9)
		arcs := RandomPolygonArcs(rng, edges)
		if len(arcs) != edges {
			t.Fatalf("seed %d: expected %d arcs, got %d", seed, edges, len(arcs))
		}
		maxStep := 360.0 / float64(edges)
		sum := 0.0
		for i, a := range arcs {
			if i < edges-1 && (a < maxStep/2 || a > maxStep) {
				t.Errorf("seed %d: arc %d = %f outside [%f, %f]", seed, i, a, maxStep/2, maxStep)
			}
			if a <= 0 {
				t.Errorf("seed %d: arc %d is not positive: %f", seed, i, a)
			}
			sum += a
		}
		if !approxEqual(sum, 360, 1e-9) {
			t.Errorf("seed %d: arcs sum to %f, want 360", seed, sum)
		}
	}
}

func TestRandomPolygonLastVertexClosesAt360(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	c := Pt(-0.4, 0.3)
	pts := RandomPolygon(rng, c, 0.04, 6, 0, 1)
	if len(pts) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(pts))
	}
	last := pts[len(pts)-1]
	if !approxEqual(last.X, c.X+0.04, 1e-12) || !approxEqual(last.Y, c.Y, 1e-12) {
		t.Errorf("last vertex (%f,%f) should sit at 360°", last.X, last.Y)
	}
	for i, p := range pts {
		if !approxEqual(p.Distance(c), 0.04, 1e-12) {
			t.Errorf("vertex %d off the circle: %f", i, p.Distance(c))
		}
	}
}

func TestRandomPolygonEmpty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if pts := RandomPolygon(rng, Origin, 1, 0, 0, 1); pts != nil {
		t.Errorf("expected nil, got %d vertices", len(pts))
	}
}
