package layout

import "github.com/ChicagoDave/villageplanner/pkg/geo"

const (
	// DefaultMargin is the buffer kept between an entity and the canvas
	// edge or river bank.
	DefaultMargin = 0.05

	// DefaultMaxAttempts bounds the rejection sampler.
	DefaultMaxAttempts = 1000
)

// Placement holds the constraints one sampling call works under.
type Placement struct {
	Radius      float64
	RiverWidth  float64
	Aspect      float64
	Margin      float64
	MaxAttempts int
}

// Bands returns the valid center ranges: x in [inner, outer] on the right
// bank (mirrored on the left) and y in [-outer, outer].
func (p Placement) Bands() (inner, outer float64) {
	inner = p.RiverWidth/2 + p.Radius + p.Margin
	outer = 1 - p.Radius - p.Margin
	return inner, outer
}

// SamplePosition finds a center for a new entity by rejection sampling.
// Each attempt picks a bank with a coin flip, draws x inside that bank's band
// and y inside the vertical band, and accepts the candidate when it keeps a
// distance of at least 2·radius from every placed center. The Y delta is
// divided by aspect for this check while rendering multiplies by it; the two
// are deliberately kept asymmetric.
//
// ErrPlacementExhausted is returned after MaxAttempts rejections.
func SamplePosition(rng Source, placed []geo.Point2D, p Placement) (geo.Point2D, error) {
	inner, outer := p.Bands()
	minDist := 2 * p.Radius

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		var x float64
		if coin(rng) {
			x = uniform(rng, -outer, -inner)
		} else {
			x = uniform(rng, inner, outer)
		}
		y := uniform(rng, -outer, outer)

		candidate := geo.Pt(x, y)
		if isClear(candidate, placed, minDist, p.Aspect) {
			return candidate, nil
		}
	}
	return geo.Point2D{}, ErrPlacementExhausted
}

func isClear(candidate geo.Point2D, placed []geo.Point2D, minDist, aspect float64) bool {
	for _, q := range placed {
		if candidate.AspectDistance(q, aspect) < minDist {
			return false
		}
	}
	return true
}
