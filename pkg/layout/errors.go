package layout

import "errors"

var (
	// ErrPlacementExhausted means the sampler found no valid position within
	// its attempt budget. Generate recovers from it by skipping the entity.
	ErrPlacementExhausted = errors.New("no valid placement found")

	// ErrDegenerateAttractor means an attractor coincides with the candidate
	// position, which makes its inverse-distance score infinite.
	ErrDegenerateAttractor = errors.New("attractor coincides with candidate position")

	// ErrNoAttractors is returned by Classify when there is nothing to
	// weight the draw with.
	ErrNoAttractors = errors.New("no attractors")

	// ErrInvalidInput rejects a request before any sampling begins.
	ErrInvalidInput = errors.New("invalid layout input")
)
