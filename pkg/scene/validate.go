package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
	"github.com/ChicagoDave/villageplanner/pkg/validation"
)

// ValidateDocument performs structural validation on a saved document.
// It checks the river, entity integrity, rock outlines, spacing and
// attractors. Errors block a reload; warnings flag layouts the generator
// would not have produced.
func ValidateDocument(d *Document) *validation.Report {
	r := validation.NewReport()

	if d == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: "document is nil",
		})
		return r
	}

	validateRiver(d, r)
	validateEntities(d, "houses", d.EntityData.Houses, false, r)
	validateEntities(d, "rocks", d.EntityData.Rocks, true, r)
	validateEntities(d, "trees", d.EntityData.Trees, false, r)
	validateSpacing(d, r)
	validateAttractorData(d, r)

	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateRiver(d *Document, r *validation.Report) {
	w := d.EntityData.RiverWidth
	if !finite(w) || w <= 0 || w >= 1 {
		r.AddError(validation.Result{
			Level:       validation.LevelScene,
			Message:     fmt.Sprintf("river width %v outside (0, 1)", w),
			Path:        "entityData.riverWidth",
			ActualValue: w,
			Expected:    "0 < width < 1",
			Suggestions: []string{"regenerate the scene", "set riverWidth to a fraction of the canvas width, e.g. 0.25"},
		})
	}
}

func validateEntities(d *Document, group string, docs []EntityDoc, rock bool, r *validation.Report) {
	half := d.EntityData.RiverWidth / 2

	for i, e := range docs {
		path := fmt.Sprintf("entityData.%s[%d]", group, i)

		if !e.Pos.IsFinite() {
			r.AddError(validation.Result{
				Level:    validation.LevelScene,
				Message:  fmt.Sprintf("%s has a non-finite position", path),
				Path:     path + ".pos",
				Expected: "finite coordinates",
			})
			continue
		}
		if !finite(e.Radius) || e.Radius <= 0 {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("%s has radius %v", path, e.Radius),
				Path:        path + ".radius",
				ActualValue: e.Radius,
				Expected:    "> 0",
			})
		}
		if !finite(e.Rot) {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("%s has a non-finite rotation", path),
				Path:        path + ".rot",
				ActualValue: e.Rot,
			})
		} else if e.Rot < 0 || e.Rot >= 360 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("%s rotation %v outside [0, 360)", path, e.Rot),
				Path:        path + ".rot",
				ActualValue: e.Rot,
			})
		}

		if math.Abs(e.Pos.X) <= half {
			r.AddWarning(validation.Result{
				Level:        validation.LevelScene,
				Message:      fmt.Sprintf("%s at x=%.4f sits in the river", path, e.Pos.X),
				Path:         path + ".pos.x",
				ActualValue:  e.Pos.X,
				ConflictWith: "entityData.riverWidth",
				Suggestions:  []string{fmt.Sprintf("move it past |x| > %.4f", half)},
			})
		}
		if math.Abs(e.Pos.X) > 1 || math.Abs(e.Pos.Y) > 1 {
			r.AddWarning(validation.Result{
				Level:   validation.LevelScene,
				Message:     fmt.Sprintf("%s at (%.4f, %.4f) is off the canvas", path, e.Pos.X, e.Pos.Y),
				Path:        path + ".pos",
				Expected:    "-1 <= x, y <= 1",
				Suggestions: []string{"positions are canvas fractions; scale pixel coordinates down"},
			})
		}

		switch {
		case rock && len(e.Corners) < 3:
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("%s has %d corners", path, len(e.Corners)),
				Path:        path + ".corners",
				ActualValue: len(e.Corners),
				Expected:    ">= 3 corners",
				Suggestions: []string{"regenerate the rock outline", "move the entry to houses or trees"},
			})
		case rock:
			ok := true
			for j, c := range e.Corners {
				if !finite(c[0]) || !finite(c[1]) {
					ok = false
					r.AddError(validation.Result{
						Level:   validation.LevelScene,
						Message: fmt.Sprintf("%s corner %d is not finite", path, j),
						Path:    fmt.Sprintf("%s.corners[%d]", path, j),
					})
				}
			}
			if ok {
				validateOutline(e, path, documentAspect(d), r)
			}
		case len(e.Corners) > 0:
			r.AddWarning(validation.Result{
				Level:   validation.LevelScene,
				Message:     fmt.Sprintf("%s carries corners; only rocks keep an outline", path),
				Path:        path + ".corners",
				Suggestions: []string{"drop the corners field"},
			})
		}
	}
}

// validateOutline warns about rock outlines that collapse to a line or
// reach past the placement circle.
func validateOutline(e EntityDoc, path string, aspect float64, r *validation.Report) {
	poly := geo.PolygonFromPairs(e.Corners)
	if poly.Area() < 1e-12 {
		r.AddWarning(validation.Result{
			Level:   validation.LevelScene,
			Message: fmt.Sprintf("%s outline has no area", path),
			Path:    path + ".corners",
		})
	}
	if reach := poly.Reach(e.Pos, aspect); finite(e.Radius) && reach > e.Radius+1e-9 {
		r.AddWarning(validation.Result{
			Level:       validation.LevelScene,
			Message:     fmt.Sprintf("%s outline reaches %.4f past radius %.4f", path, reach, e.Radius),
			Path:        path + ".corners",
			ActualValue: reach,
			Expected:    fmt.Sprintf("<= %v", e.Radius),
		})
	}
}

func documentAspect(d *Document) float64 {
	if d.Metadata != nil && d.Metadata.Aspect > 0 && finite(d.Metadata.Aspect) {
		return d.Metadata.Aspect
	}
	return 1
}

// validateSpacing warns about entity pairs closer than the sum of their
// radii. The Y delta is aspect-corrected the same way the sampler does it.
func validateSpacing(d *Document, r *validation.Report) {
	aspect := documentAspect(d)

	type placed struct {
		path string
		doc  EntityDoc
	}
	var all []placed
	groups := []struct {
		name string
		docs []EntityDoc
	}{
		{"houses", d.EntityData.Houses},
		{"rocks", d.EntityData.Rocks},
		{"trees", d.EntityData.Trees},
	}
	for _, g := range groups {
		for i, e := range g.docs {
			if e.Pos.IsFinite() {
				all = append(all, placed{fmt.Sprintf("entityData.%s[%d]", g.name, i), e})
			}
		}
	}

	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			limit := a.doc.Radius + b.doc.Radius
			if dist := a.doc.Pos.AspectDistance(b.doc.Pos, aspect); dist < limit {
				r.AddWarning(validation.Result{
					Level:        validation.LevelScene,
					Message:      fmt.Sprintf("%s and %s overlap (%.4f < %.4f)", a.path, b.path, dist, limit),
					Path:         a.path,
					ConflictWith: b.path,
					ActualValue:  dist,
					Suggestions:  []string{"move one of them apart", "shrink one of the radii"},
				})
			}
		}
	}
}

func validateAttractorData(d *Document, r *validation.Report) {
	for i, a := range d.AttractorData {
		path := fmt.Sprintf("attractorData[%d]", i)
		if !layout.EntityType(a.Type).Valid() {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("%s has unknown type %q", path, a.Type),
				Path:        path + ".type",
				ActualValue: a.Type,
				Expected:    "house, rock or tree",
				Suggestions: []string{suggestType(a.Type)},
			})
		}
		if !a.Pos.IsFinite() {
			r.AddError(validation.Result{
				Level:    validation.LevelScene,
				Message:  fmt.Sprintf("%s has a non-finite position", path),
				Path:     path + ".pos",
				Expected: "finite coordinates",
			})
		}
	}
}

// suggestType proposes the entity type closest to an unknown attractor
// type by shared prefix, falling back to the full list.
func suggestType(got string) string {
	g := strings.ToLower(strings.TrimSpace(got))
	for _, t := range []layout.EntityType{layout.EntityHouse, layout.EntityRock, layout.EntityTree} {
		if g != "" && (strings.HasPrefix(string(t), g) || strings.HasPrefix(g, string(t))) {
			return fmt.Sprintf("did you mean %q?", t)
		}
	}
	return "use one of house, rock, tree"
}
