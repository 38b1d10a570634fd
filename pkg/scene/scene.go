package scene

import "github.com/ChicagoDave/villageplanner/pkg/geo"

// FormatVersion identifies the document layout written by this package.
const FormatVersion = "0.1.0"

// Document is the saved form of a village: the generated entities grouped by
// type, the attractors that produced them and the debug flag. Rock corners
// are stored so a reload replays the outline instead of drawing a new one.
type Document struct {
	Metadata      *Metadata      `json:"metadata,omitempty" jsonschema:"description=Optional provenance written by the generator"`
	EntityData    EntityData     `json:"entityData" jsonschema:"required,description=Generated river and entities"`
	AttractorData []AttractorDoc `json:"attractorData" jsonschema:"required,description=Attractors in the order they were placed"`
	Debug         bool           `json:"debug" jsonschema:"description=Draw placement circles when rendering"`
}

// Metadata holds document-level information.
type Metadata struct {
	FormatVersion string  `json:"format_version"`
	GeneratedAt   string  `json:"generated_at,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
	Aspect        float64 `json:"aspect,omitempty"`
}

// EntityData holds the river width and the entities of each type in
// generation order.
type EntityData struct {
	RiverWidth float64     `json:"riverWidth" jsonschema:"required,exclusiveMinimum=0,exclusiveMaximum=1"`
	Houses     []EntityDoc `json:"houses" jsonschema:"required"`
	Rocks      []EntityDoc `json:"rocks" jsonschema:"required"`
	Trees      []EntityDoc `json:"trees" jsonschema:"required"`
}

// EntityDoc is one saved entity. Corners is only present for rocks.
type EntityDoc struct {
	Pos     geo.Point2D  `json:"pos" jsonschema:"required"`
	Rot     float64      `json:"rot" jsonschema:"required,minimum=0,exclusiveMaximum=360,description=Rotation in degrees"`
	Radius  float64      `json:"radius" jsonschema:"required,exclusiveMinimum=0"`
	Corners [][2]float64 `json:"corners,omitempty" jsonschema:"description=Rock outline vertices as [x, y] pairs"`
}

// AttractorDoc is one saved attractor.
type AttractorDoc struct {
	Type string      `json:"type" jsonschema:"required,enum=house,enum=rock,enum=tree"`
	Pos  geo.Point2D `json:"pos" jsonschema:"required"`
}

// NewDocument creates an empty document with every list allocated so it
// encodes as [] rather than null.
func NewDocument() *Document {
	return &Document{
		EntityData: EntityData{
			Houses: []EntityDoc{},
			Rocks:  []EntityDoc{},
			Trees:  []EntityDoc{},
		},
		AttractorData: []AttractorDoc{},
	}
}
