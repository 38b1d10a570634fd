package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
)

// FromScene captures a scene and its attractors as a document.
func FromScene(s *layout.Scene, attractors []layout.Attractor, debug bool) *Document {
	d := NewDocument()
	d.Debug = debug
	if s != nil {
		d.EntityData.RiverWidth = s.River.Width
		for _, e := range s.Entities {
			ed := EntityDoc{Pos: e.Position, Rot: e.Rotation, Radius: e.Radius}
			if len(e.Geometry) > 0 {
				ed.Corners = geo.NewPolygon(e.Geometry...).Pairs()
			}
			switch e.Type {
			case layout.EntityHouse:
				d.EntityData.Houses = append(d.EntityData.Houses, ed)
			case layout.EntityRock:
				d.EntityData.Rocks = append(d.EntityData.Rocks, ed)
			case layout.EntityTree:
				d.EntityData.Trees = append(d.EntityData.Trees, ed)
			}
		}
	}
	for _, a := range attractors {
		d.AttractorData = append(d.AttractorData, AttractorDoc{Type: a.Type.String(), Pos: a.Position})
	}
	return d
}

// Stamp records provenance on the document.
func (d *Document) Stamp(seed int64, aspect float64, at time.Time) {
	d.Metadata = &Metadata{
		FormatVersion: FormatVersion,
		GeneratedAt:   at.UTC().Format(time.RFC3339),
		Seed:          seed,
		Aspect:        aspect,
	}
}

// Scene rebuilds the scene and attractor list. Entities come back grouped
// houses, rocks, trees; rock outlines are taken from the stored corners and
// corners on any other type are ignored.
func (d *Document) Scene() (*layout.Scene, []layout.Attractor, error) {
	if r := ValidateDocument(d); !r.Valid {
		return nil, nil, r.Err()
	}

	s := &layout.Scene{
		River:    layout.River{Width: d.EntityData.RiverWidth},
		Entities: make([]layout.Entity, 0, d.EntityCount()),
	}
	add := func(t layout.EntityType, docs []EntityDoc) {
		for _, ed := range docs {
			e := layout.Entity{Type: t, Position: ed.Pos, Rotation: ed.Rot, Radius: ed.Radius}
			if t == layout.EntityRock {
				e.Geometry = geo.PolygonFromPairs(ed.Corners).Vertices
			}
			s.Entities = append(s.Entities, e)
		}
	}
	add(layout.EntityHouse, d.EntityData.Houses)
	add(layout.EntityRock, d.EntityData.Rocks)
	add(layout.EntityTree, d.EntityData.Trees)

	attractors := make([]layout.Attractor, 0, len(d.AttractorData))
	for i, a := range d.AttractorData {
		t, err := layout.ParseEntityType(a.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("attractorData[%d]: %w", i, err)
		}
		attractors = append(attractors, layout.Attractor{Type: t, Position: a.Pos})
	}
	return s, attractors, nil
}

// EntityCount returns the number of saved entities of every type.
func (d *Document) EntityCount() int {
	return len(d.EntityData.Houses) + len(d.EntityData.Rocks) + len(d.EntityData.Trees)
}

// Encode writes d as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// Decode reads a document from r. Missing entity lists decode as empty.
func Decode(r io.Reader) (*Document, error) {
	d := NewDocument()
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if d.EntityData.Houses == nil {
		d.EntityData.Houses = []EntityDoc{}
	}
	if d.EntityData.Rocks == nil {
		d.EntityData.Rocks = []EntityDoc{}
	}
	if d.EntityData.Trees == nil {
		d.EntityData.Trees = []EntityDoc{}
	}
	if d.AttractorData == nil {
		d.AttractorData = []AttractorDoc{}
	}
	return d, nil
}

// ReadFile loads a document from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile saves d to path, replacing any existing file.
func WriteFile(path string, d *Document) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := d.Encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}
