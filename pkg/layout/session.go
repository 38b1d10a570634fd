package layout

import (
	"fmt"
	"sync"
)

// Session holds the interactive state of one editing surface: generation
// parameters, the attractors placed so far, the current scene and the debug
// flag. Every mutation regenerates under the session lock, so at most one
// generation runs at a time and readers never see a half-built scene.
type Session struct {
	mu         sync.Mutex
	rng        Source
	req        Request
	attractors []Attractor
	scene      *Scene
	debug      bool
	generation uint64
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Scene      *Scene      `json:"scene"`
	Attractors []Attractor `json:"attractors"`
	Debug      bool        `json:"debug"`
	Generation uint64      `json:"generation"`
}

// NewSession validates req and produces the initial scene from its
// attractors.
func NewSession(rng Source, req Request) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		rng:        rng,
		req:        req,
		attractors: append([]Attractor(nil), req.Attractors...),
	}
	s.req.Attractors = nil
	if _, err := s.regenerateLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) regenerateLocked() (*Scene, error) {
	req := s.req
	req.Attractors = s.attractors
	scene, _, err := Generate(s.rng, req)
	if err != nil {
		return nil, err
	}
	s.scene = scene
	s.generation++
	return scene, nil
}

// Regenerate draws a fresh scene with the current parameters.
func (s *Session) Regenerate() (*Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regenerateLocked()
}

// AddAttractor appends an attractor and regenerates. The attractor is
// dropped again if generation fails.
func (s *Session) AddAttractor(a Attractor) (*Scene, error) {
	if !a.Type.Valid() {
		return nil, fmt.Errorf("unknown attractor type %q: %w", a.Type, ErrInvalidInput)
	}
	if !a.Position.IsFinite() {
		return nil, fmt.Errorf("attractor position must be finite: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.attractors
	s.attractors = append(append([]Attractor(nil), prev...), a)
	scene, err := s.regenerateLocked()
	if err != nil {
		s.attractors = prev
		return nil, err
	}
	return scene, nil
}

// SetCount changes the requested entity count and regenerates.
func (s *Session) SetCount(n int) (*Scene, error) {
	return s.Update(func(r *Request) { r.Count = n })
}

// SetRiverRange changes the river width range and regenerates.
func (s *Session) SetRiverRange(lo, hi float64) (*Scene, error) {
	return s.Update(func(r *Request) {
		r.RiverWidthMin = lo
		r.RiverWidthMax = hi
	})
}

// Update applies fn to a copy of the parameters and regenerates. The copy
// is kept only if it validates and generates. Attractors are managed
// separately; changes fn makes to req.Attractors are ignored.
func (s *Session) Update(fn func(*Request)) (*Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.req
	fn(&next)
	next.Attractors = nil
	if err := next.Validate(); err != nil {
		return nil, err
	}
	prev := s.req
	s.req = next
	scene, err := s.regenerateLocked()
	if err != nil {
		s.req = prev
		return nil, err
	}
	return scene, nil
}

// Reset clears every attractor and leaves a river-only scene.
func (s *Session) Reset() (*Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attractors = nil
	return s.regenerateLocked()
}

// SetDebug toggles debug outlines for renderers.
func (s *Session) SetDebug(on bool) {
	s.mu.Lock()
	s.debug = on
	s.mu.Unlock()
}

// ToggleDebug flips the debug flag and returns the new value.
func (s *Session) ToggleDebug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = !s.debug
	return s.debug
}

// Restore replaces the session state with a previously saved scene. A copy
// of the scene is installed; nothing is regenerated.
func (s *Session) Restore(scene *Scene, attractors []Attractor, debug bool) error {
	if scene == nil {
		return fmt.Errorf("restore: nil scene: %w", ErrInvalidInput)
	}
	for i, a := range attractors {
		if !a.Type.Valid() {
			return fmt.Errorf("restore: attractor %d has unknown type %q: %w", i, a.Type, ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = scene.Clone()
	s.attractors = append([]Attractor(nil), attractors...)
	s.debug = debug
	s.generation++
	return nil
}

// Scene returns the current scene. The scene is shared with every other
// reader and must not be modified.
func (s *Session) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Attractors returns a copy of the placed attractors in insertion order.
func (s *Session) Attractors() []Attractor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attractor(nil), s.attractors...)
}

// Request returns the current generation parameters.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.req
	req.Attractors = append([]Attractor(nil), s.attractors...)
	return req
}

// Snapshot returns the scene, attractors and debug flag taken under one lock.
// The scene is shared as in Scene; the attractor slice is a copy.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Scene:      s.scene,
		Attractors: append([]Attractor(nil), s.attractors...),
		Debug:      s.debug,
		Generation: s.generation,
	}
}
