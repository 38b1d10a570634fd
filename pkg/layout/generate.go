package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ChicagoDave/villageplanner/pkg/config"
	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/validation"
)

const (
	DefaultRadius        = 0.05
	DefaultRiverWidthMin = 0.1
	DefaultRiverWidthMax = 0.6
	DefaultRockEdgesMin  = 4
	DefaultRockEdgesMax  = 7

	// rockInset shrinks a rock outline inside its placement circle.
	rockInset = 0.01
)

// MaxCount and MaxAttempts cap Request.Count and Request.MaxAttempts.
const (
	MaxCount    = config.MaxCount
	MaxAttempts = config.MaxMaxAttempts
)

// Request describes one layout generation.
type Request struct {
	Count         int
	Aspect        float64
	RiverWidthMin float64
	RiverWidthMax float64
	Radius        float64
	Margin        float64
	MaxAttempts   int
	RockEdgesMin  int // inclusive
	RockEdgesMax  int // exclusive
	Attractors    []Attractor
}

// DefaultRequest returns a request for count entities on a square canvas
// with no attractors.
func DefaultRequest(count int) Request {
	return Request{
		Count:         count,
		Aspect:        1,
		RiverWidthMin: DefaultRiverWidthMin,
		RiverWidthMax: DefaultRiverWidthMax,
		Radius:        DefaultRadius,
		Margin:        DefaultMargin,
		MaxAttempts:   DefaultMaxAttempts,
		RockEdgesMin:  DefaultRockEdgesMin,
		RockEdgesMax:  DefaultRockEdgesMax,
	}
}

// RequestFromConfig builds a request from a project config.
func RequestFromConfig(c *config.Config) (Request, error) {
	attractors := make([]Attractor, 0, len(c.Attractors))
	for i, a := range c.Attractors {
		t, err := ParseEntityType(a.Type)
		if err != nil {
			return Request{}, fmt.Errorf("attractors[%d]: %w", i, err)
		}
		attractors = append(attractors, Attractor{Type: t, Position: geo.Pt(a.X, a.Y)})
	}
	l := c.Layout
	return Request{
		Count:         l.Count,
		Aspect:        c.Canvas.Aspect(),
		RiverWidthMin: l.RiverWidth.Min,
		RiverWidthMax: l.RiverWidth.Max,
		Radius:        l.Radius,
		Margin:        l.Margin,
		MaxAttempts:   l.MaxAttempts,
		RockEdgesMin:  l.RockEdges.Min,
		RockEdgesMax:  l.RockEdges.Max,
		Attractors:    attractors,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Validate rejects a request that cannot be sampled. It runs before any
// random draw so a bad request never produces a partial scene.
func (r Request) Validate() error {
	switch {
	case r.Count < 0 || r.Count > MaxCount:
		return invalid("count %d must be in [0, %d]", r.Count, MaxCount)
	case !finite(r.Aspect) || r.Aspect <= 0:
		return invalid("aspect %v must be > 0", r.Aspect)
	case !finite(r.Radius) || r.Radius <= 0:
		return invalid("radius %v must be > 0", r.Radius)
	case !finite(r.Margin) || r.Margin < 0:
		return invalid("margin %v must be >= 0", r.Margin)
	case !finite(r.RiverWidthMin) || !finite(r.RiverWidthMax):
		return invalid("river width range must be finite")
	case r.RiverWidthMin <= 0 || r.RiverWidthMax >= 1 || r.RiverWidthMin > r.RiverWidthMax:
		return invalid("river width range [%v, %v] must satisfy 0 < min <= max < 1", r.RiverWidthMin, r.RiverWidthMax)
	case r.MaxAttempts < 1 || r.MaxAttempts > MaxAttempts:
		return invalid("max attempts %d must be in [1, %d]", r.MaxAttempts, MaxAttempts)
	case r.RockEdgesMin < 3 || r.RockEdgesMax <= r.RockEdgesMin:
		return invalid("rock edge range [%d, %d) must satisfy 3 <= min < max", r.RockEdgesMin, r.RockEdgesMax)
	}

	p := Placement{Radius: r.Radius, RiverWidth: r.RiverWidthMax, Margin: r.Margin}
	if inner, outer := p.Bands(); inner >= outer {
		return invalid("river width %v leaves no room for radius %v with margin %v", r.RiverWidthMax, r.Radius, r.Margin)
	}

	for i, a := range r.Attractors {
		if !a.Type.Valid() {
			return invalid("attractor %d has unknown type %q", i, a.Type)
		}
		if !a.Position.IsFinite() {
			return invalid("attractor %d position must be finite", i)
		}
	}
	return nil
}

// Generate lays out up to req.Count entities. It draws the river width, then
// for each entity samples a position, a rotation and a type, baking a random
// outline for rocks. Entities whose placement fails are skipped, so the scene
// may hold fewer than req.Count entities. With no attractors the scene holds
// only the river.
func Generate(rng Source, req Request) (*Scene, *validation.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	report := validation.NewReport()

	scene := &Scene{
		River:    River{Width: uniform(rng, req.RiverWidthMin, req.RiverWidthMax)},
		Entities: []Entity{},
	}

	if len(req.Attractors) == 0 {
		report.AddInfo(validation.Result{
			Level:   validation.LevelPlacement,
			Message: fmt.Sprintf("no attractors; river-only scene (width %.3f)", scene.River.Width),
		})
		return scene, report, nil
	}

	p := Placement{
		Radius:      req.Radius,
		RiverWidth:  scene.River.Width,
		Aspect:      req.Aspect,
		Margin:      req.Margin,
		MaxAttempts: req.MaxAttempts,
	}
	placed := make([]geo.Point2D, 0, req.Count)
	skipped := 0

	for i := 0; i < req.Count; i++ {
		pos, err := SamplePosition(rng, placed, p)
		rot := uniform(rng, 0, 360)
		if errors.Is(err, ErrPlacementExhausted) {
			skipped++
			continue
		}

		t, err := Classify(rng, req.Attractors, pos)
		if err != nil {
			return nil, report, fmt.Errorf("classifying entity %d: %w", i, err)
		}

		e := Entity{Type: t, Position: pos, Rotation: rot, Radius: req.Radius}
		switch t {
		case EntityRock:
			edges := int(math.Floor(uniform(rng, float64(req.RockEdgesMin), float64(req.RockEdgesMax))))
			e.Geometry = geo.RandomPolygon(rng, pos, rockRadius(req.Radius), edges, rot, req.Aspect)
		case EntityHouse, EntityTree:
			// Drawn from radius and rotation at render time.
		}

		placed = append(placed, pos)
		scene.Entities = append(scene.Entities, e)
	}

	counts := scene.Counts()
	report.AddInfo(validation.Result{
		Level: validation.LevelPlacement,
		Message: fmt.Sprintf("placed %d of %d entities (houses=%d, rocks=%d, trees=%d, skipped=%d)",
			len(scene.Entities), req.Count, counts[EntityHouse], counts[EntityRock], counts[EntityTree], skipped),
	})
	slog.Debug("layout generated",
		"requested", req.Count,
		"placed", len(scene.Entities),
		"skipped", skipped,
		"river_width", scene.River.Width)

	return scene, report, nil
}

// rockRadius is the outline radius for a rock of the given placement radius.
func rockRadius(r float64) float64 {
	if r > rockInset {
		return r - rockInset
	}
	return r
}
