package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the file LoadProject looks for in a project directory.
const ProjectFile = "village.yaml"

// Upper bounds on the work one generation may do. Generation holds the
// session lock, so these also bound how long other requests can wait.
const (
	MaxCount       = 500
	MaxMaxAttempts = 10000
)

// Default returns the configuration used when a project file omits a field.
func Default() *Config {
	return &Config{
		Version: "0.1.0",
		Canvas:  Canvas{Width: 800, Height: 800},
		Layout: LayoutDef{
			Count:       20,
			Radius:      0.05,
			Margin:      0.05,
			MaxAttempts: 1000,
			RiverWidth:  FloatRange{Min: 0.1, Max: 0.6},
			RockEdges:   IntRange{Min: 4, Max: 7},
		},
		Debug: true,
		Store: StoreDef{Path: "village.db"},
	}
}

// Load reads a village config from a YAML file. Fields missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// LoadProject loads a village config from a project directory.
// It looks for village.yaml in the given directory.
func LoadProject(projectDir string) (*Config, error) {
	return Load(filepath.Join(projectDir, ProjectFile))
}

// RiverRangeFromPixels converts a river slider selection in canvas pixels
// into a normalized width range.
func RiverRangeFromPixels(lo, hi, canvasWidth int) FloatRange {
	if canvasWidth <= 0 {
		return FloatRange{}
	}
	w := float64(canvasWidth)
	return FloatRange{Min: float64(lo) / w, Max: float64(hi) / w}
}

// DefaultSliderRange is the slider selection the canvas starts with:
// centered, one fifth of the width either side.
func DefaultSliderRange(canvasWidth int) (lo, hi int) {
	return canvasWidth/2 - canvasWidth/5, canvasWidth/2 + canvasWidth/5
}
