package layout

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
)

// Scores holds the summed inverse-distance weight of each entity type.
type Scores struct {
	House float64 `json:"house"`
	Rock  float64 `json:"rock"`
	Tree  float64 `json:"tree"`
}

// Total returns the sum of all three scores.
func (s Scores) Total() float64 {
	return s.House + s.Rock + s.Tree
}

// Probability returns the chance that Classify picks t.
func (s Scores) Probability(t EntityType) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	switch t {
	case EntityHouse:
		return s.House / total
	case EntityRock:
		return s.Rock / total
	case EntityTree:
		return s.Tree / total
	}
	return 0
}

// Weights sums 1/distance from candidate to every attractor, per type.
// An attractor sitting on the candidate yields ErrDegenerateAttractor.
func Weights(attractors []Attractor, candidate geo.Point2D) (Scores, error) {
	if !candidate.IsFinite() {
		return Scores{}, fmt.Errorf("candidate (%v, %v) must be finite: %w", candidate.X, candidate.Y, ErrInvalidInput)
	}
	var s Scores
	for i, a := range attractors {
		d := a.Position.Distance(candidate)
		score := 1 / d
		if d == 0 || math.IsInf(score, 0) {
			return Scores{}, fmt.Errorf("attractor %d (%s at %.4f, %.4f): %w",
				i, a.Type, a.Position.X, a.Position.Y, ErrDegenerateAttractor)
		}
		if math.IsNaN(score) {
			return Scores{}, fmt.Errorf("attractor %d has a non-finite position: %w", i, ErrInvalidInput)
		}

		switch a.Type {
		case EntityHouse:
			s.House += score
		case EntityRock:
			s.Rock += score
		case EntityTree:
			s.Tree += score
		default:
			return Scores{}, fmt.Errorf("attractor %d: unknown type %q: %w", i, a.Type, ErrInvalidInput)
		}
	}
	return s, nil
}

// Classify draws an entity type for candidate with probability proportional
// to each type's score. Buckets are laid out house, rock, tree on [0, total).
func Classify(rng Source, attractors []Attractor, candidate geo.Point2D) (EntityType, error) {
	if len(attractors) == 0 {
		return "", ErrNoAttractors
	}
	s, err := Weights(attractors, candidate)
	if err != nil {
		return "", err
	}

	houseEnd := s.House
	rockEnd := houseEnd + s.Rock
	treeEnd := rockEnd + s.Tree

	t := uniform(rng, 0, treeEnd)
	switch {
	case t < houseEnd:
		return EntityHouse, nil
	case t < rockEnd:
		return EntityRock, nil
	default:
		return EntityTree, nil
	}
}
