package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/villageplanner/pkg/config"
)

// attractorTypes are the entity type names an attractor may carry.
var attractorTypes = map[string]bool{"house": true, "rock": true, "tree": true}

// ValidateConfig performs schema validation on a parsed village Config.
// It checks structural correctness before any sampling happens.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateCanvas(c, r)
	validateLayout(c, r)
	validateRiver(c, r)
	validateRockEdges(c, r)
	validateAttractors(c, r)

	return r
}

func validateCanvas(c *config.Config, r *Report) {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("canvas must have positive dimensions (got %dx%d)", c.Canvas.Width, c.Canvas.Height),
			Path:        "canvas",
			ActualValue: fmt.Sprintf("%dx%d", c.Canvas.Width, c.Canvas.Height),
			Expected:    "width > 0, height > 0",
		})
	}
}

func validateLayout(c *config.Config, r *Report) {
	l := c.Layout
	if l.Count < 0 || l.Count > config.MaxCount {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("layout.count must be between 0 and %d", config.MaxCount),
			Path:        "layout.count",
			ActualValue: l.Count,
			Expected:    fmt.Sprintf("0..%d", config.MaxCount),
		})
	}
	if !(l.Radius > 0) || math.IsInf(l.Radius, 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "layout.radius must be a positive number",
			Path:        "layout.radius",
			ActualValue: l.Radius,
			Expected:    "> 0",
		})
	}
	if l.Margin < 0 || math.IsNaN(l.Margin) || math.IsInf(l.Margin, 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "layout.margin must be non-negative",
			Path:        "layout.margin",
			ActualValue: l.Margin,
			Expected:    ">= 0",
		})
	}
	if l.MaxAttempts < 1 || l.MaxAttempts > config.MaxMaxAttempts {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("layout.max_attempts must be between 1 and %d", config.MaxMaxAttempts),
			Path:        "layout.max_attempts",
			ActualValue: l.MaxAttempts,
			Expected:    fmt.Sprintf("1..%d", config.MaxMaxAttempts),
		})
	}
}

func validateRiver(c *config.Config, r *Report) {
	rw := c.Layout.RiverWidth
	if !(rw.Min > 0) || !(rw.Max < 1) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("river_width %.3f-%.3f must lie inside (0, 1)", rw.Min, rw.Max),
			Path:        "layout.river_width",
			ActualValue: fmt.Sprintf("%.3f-%.3f", rw.Min, rw.Max),
			Expected:    "0 < min <= max < 1",
		})
		return
	}
	if rw.Min > rw.Max {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("river_width min (%.3f) must not exceed max (%.3f)", rw.Min, rw.Max),
			Path:        "layout.river_width.min",
			ActualValue: rw.Min,
			Expected:    fmt.Sprintf("<= %.3f", rw.Max),
		})
		return
	}

	// The widest river must still leave a placement band on each bank.
	clearance := c.Layout.Radius + c.Layout.Margin
	if rw.Max/2+2*clearance >= 1 {
		r.AddError(Result{
			Level:        LevelSchema,
			Message:      fmt.Sprintf("river width %.3f leaves no room for entities of radius %.3f with margin %.3f", rw.Max, c.Layout.Radius, c.Layout.Margin),
			Path:         "layout.river_width.max",
			ActualValue:  rw.Max,
			Expected:     fmt.Sprintf("< %.3f", 2*(1-2*clearance)),
			ConflictWith: "layout.radius",
			Suggestions:  []string{"Narrow the river range", "Reduce layout.radius or layout.margin"},
		})
	}
}

func validateRockEdges(c *config.Config, r *Report) {
	re := c.Layout.RockEdges
	if re.Min < 3 || re.Max <= re.Min {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("rock_edges %d-%d must satisfy 3 <= min < max", re.Min, re.Max),
			Path:        "layout.rock_edges",
			ActualValue: fmt.Sprintf("%d-%d", re.Min, re.Max),
			Expected:    "3 <= min < max",
		})
	}
}

func validateAttractors(c *config.Config, r *Report) {
	if len(c.Attractors) == 0 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "no attractors defined; generation produces a river-only scene",
			Path:        "attractors",
			Suggestions: []string{"Add at least one house, rock or tree attractor"},
		})
		return
	}

	for i, a := range c.Attractors {
		path := fmt.Sprintf("attractors[%d]", i)
		if !attractorTypes[a.Type] {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: unknown type %q", path, a.Type),
				Path:        path + ".type",
				ActualValue: a.Type,
				Expected:    "house, rock or tree",
			})
		}
		if math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsInf(a.X, 0) || math.IsInf(a.Y, 0) {
			r.AddError(Result{
				Level:   LevelSchema,
				Message: fmt.Sprintf("%s: position must be finite", path),
				Path:    path,
			})
			continue
		}
		if math.Abs(a.X) > 1 || math.Abs(a.Y) > 1 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%.2f, %.2f) lies outside the canvas", path, a.X, a.Y),
				Path:        path,
				ActualValue: fmt.Sprintf("(%.2f, %.2f)", a.X, a.Y),
				Expected:    "-1 <= x, y <= 1",
			})
		}
	}
}
