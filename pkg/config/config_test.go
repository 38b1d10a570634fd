package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleProject = `version: "0.1.0"
canvas:
  width: 1200
  height: 800
layout:
  count: 35
  river_width:
    min: 0.2
    max: 0.3
seed: 7
debug: false
attractors:
  - {type: tree, x: 0.9, y: 0.9}
  - {type: house, x: -0.5, y: 0.1}
`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(body), 0o644); err != nil {
		t.Fatalf("writing project: %v", err)
	}
	return dir
}

func TestLoadProject(t *testing.T) {
	cfg, err := LoadProject(writeProject(t, sampleProject))
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if cfg.Version != "0.1.0" {
		t.Errorf("version = %q, want %q", cfg.Version, "0.1.0")
	}
	if cfg.Layout.Count != 35 {
		t.Errorf("count = %d, want 35", cfg.Layout.Count)
	}
	if cfg.Layout.RiverWidth.Min != 0.2 || cfg.Layout.RiverWidth.Max != 0.3 {
		t.Errorf("river_width = %v, want 0.2-0.3", cfg.Layout.RiverWidth)
	}
	if cfg.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Seed)
	}
	if cfg.Debug {
		t.Error("debug = true, want false")
	}
	if len(cfg.Attractors) != 2 {
		t.Fatalf("attractors = %d, want 2", len(cfg.Attractors))
	}
	if cfg.Attractors[0].Type != "tree" || cfg.Attractors[0].X != 0.9 {
		t.Errorf("attractor[0] = %+v", cfg.Attractors[0])
	}
	if math.Abs(cfg.Canvas.Aspect()-1.5) > 1e-12 {
		t.Errorf("aspect = %v, want 1.5", cfg.Canvas.Aspect())
	}
}

func TestLoadProjectKeepsDefaults(t *testing.T) {
	cfg, err := LoadProject(writeProject(t, "layout:\n  count: 3\n"))
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	def := Default()
	if cfg.Layout.Radius != def.Layout.Radius {
		t.Errorf("radius = %v, want default %v", cfg.Layout.Radius, def.Layout.Radius)
	}
	if cfg.Layout.MaxAttempts != 1000 {
		t.Errorf("max_attempts = %d, want 1000", cfg.Layout.MaxAttempts)
	}
	if cfg.Layout.RockEdges != (IntRange{Min: 4, Max: 7}) {
		t.Errorf("rock_edges = %v, want 4-7", cfg.Layout.RockEdges)
	}
	if cfg.Layout.Count != 3 {
		t.Errorf("count = %d, want 3", cfg.Layout.Count)
	}
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	if err == nil {
		t.Error("expected error for missing project directory")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("layout: [unterminated")); err == nil {
		t.Error("expected YAML parse error")
	}
}

func TestRiverRangeFromPixels(t *testing.T) {
	lo, hi := DefaultSliderRange(1000)
	if lo != 300 || hi != 700 {
		t.Fatalf("slider = %d-%d, want 300-700", lo, hi)
	}
	r := RiverRangeFromPixels(lo, hi, 1000)
	if math.Abs(r.Min-0.3) > 1e-12 || math.Abs(r.Max-0.7) > 1e-12 {
		t.Errorf("range = %v, want 0.3-0.7", r)
	}
	if got := RiverRangeFromPixels(1, 2, 0); got != (FloatRange{}) {
		t.Errorf("zero width should give empty range, got %v", got)
	}
}
