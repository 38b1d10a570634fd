package layout

import (
	"fmt"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
)

// EntityType identifies the kind of entity placed on the canvas.
type EntityType string

const (
	EntityHouse EntityType = "house"
	EntityRock  EntityType = "rock"
	EntityTree  EntityType = "tree"
)

// EntityTypes lists every entity type in classification order.
var EntityTypes = []EntityType{EntityHouse, EntityRock, EntityTree}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityHouse, EntityRock, EntityTree:
		return true
	}
	return false
}

func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType converts a type name into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}

// UnmarshalText rejects unknown type names.
func (t *EntityType) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// River is the vertical corridor centered on x=0 spanning the canvas height.
type River struct {
	Width float64 `json:"width"`
}

// Contains reports whether x lies inside the corridor.
func (r River) Contains(x float64) bool {
	return x >= -r.Width/2 && x <= r.Width/2
}

// Entity is a placed house, rock or tree. Geometry is only set for rocks,
// whose outline is randomized once at generation time.
type Entity struct {
	Type     EntityType    `json:"type"`
	Position geo.Point2D   `json:"position"`
	Rotation float64       `json:"rotation"` // degrees
	Radius   float64       `json:"radius"`
	Geometry []geo.Point2D `json:"geometry,omitempty"`
}

// Attractor is a user-placed point that biases the type of nearby entities.
type Attractor struct {
	Type     EntityType  `json:"type"`
	Position geo.Point2D `json:"position"`
}

// Scene is one generated layout. It is never modified after Generate
// returns it.
type Scene struct {
	River    River    `json:"river"`
	Entities []Entity `json:"entities"`
}

// Clone returns a deep copy of s.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	c := &Scene{River: s.River, Entities: make([]Entity, len(s.Entities))}
	for i, e := range s.Entities {
		if e.Geometry != nil {
			e.Geometry = append([]geo.Point2D(nil), e.Geometry...)
		}
		c.Entities[i] = e
	}
	return c
}

// OfType returns the entities of type t in generation order.
func (s *Scene) OfType(t EntityType) []Entity {
	var out []Entity
	for _, e := range s.Entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *Scene) Houses() []Entity { return s.OfType(EntityHouse) }
func (s *Scene) Rocks() []Entity  { return s.OfType(EntityRock) }
func (s *Scene) Trees() []Entity  { return s.OfType(EntityTree) }

// Counts returns the number of entities per type.
func (s *Scene) Counts() map[EntityType]int {
	counts := make(map[EntityType]int, len(EntityTypes))
	for _, e := range s.Entities {
		counts[e.Type]++
	}
	return counts
}

// Positions returns every entity center in order.
func (s *Scene) Positions() []geo.Point2D {
	pts := make([]geo.Point2D, len(s.Entities))
	for i, e := range s.Entities {
		pts[i] = e.Position
	}
	return pts
}

// CanvasToNormalized maps a click at pixel (px, py), measured from the top
// left of a w×h canvas, to normalized coordinates with Y up.
func CanvasToNormalized(px, py, w, h float64) geo.Point2D {
	return geo.Point2D{
		X: -1 + 2*px/w,
		Y: -1 + 2*(h-py)/h,
	}
}
