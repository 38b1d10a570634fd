package layout

import (
	"math/rand/v2"
	"time"
)

// Source is the random stream every sampling step draws from. *rand.Rand
// satisfies it; tests inject fixed sequences.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded PCG source. A zero seed picks one from the
// clock.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// uniform draws from [lo, hi). lo == hi returns lo exactly.
func uniform(rng Source, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}

// coin is an unbiased flip.
func coin(rng Source) bool {
	return rng.Float64() >= 0.5
}
