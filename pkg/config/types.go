package config

// Config is the top-level definition of a village project.
type Config struct {
	Version    string         `yaml:"version" json:"version"`
	Canvas     Canvas         `yaml:"canvas" json:"canvas"`
	Layout     LayoutDef      `yaml:"layout" json:"layout"`
	Seed       int64          `yaml:"seed" json:"seed"`
	Debug      bool           `yaml:"debug" json:"debug"`
	Attractors []AttractorDef `yaml:"attractors" json:"attractors"`
	Store      StoreDef       `yaml:"store" json:"store"`
}

// Canvas is the pixel size of the drawing surface. Its ratio is the aspect
// used for Y correction.
type Canvas struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Aspect returns width/height, or 0 when the canvas has no height.
func (c Canvas) Aspect() float64 {
	if c.Height == 0 {
		return 0
	}
	return float64(c.Width) / float64(c.Height)
}

type LayoutDef struct {
	Count       int        `yaml:"count" json:"count"`
	Radius      float64    `yaml:"radius" json:"radius"`
	Margin      float64    `yaml:"margin" json:"margin"`
	MaxAttempts int        `yaml:"max_attempts" json:"max_attempts"`
	RiverWidth  FloatRange `yaml:"river_width" json:"river_width"`
	RockEdges   IntRange   `yaml:"rock_edges" json:"rock_edges"`
}

// FloatRange is an inclusive [min, max] range.
type FloatRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// IntRange is a half-open [min, max) range.
type IntRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// AttractorDef is an attractor point declared in the project file.
type AttractorDef struct {
	Type string  `yaml:"type" json:"type"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
}

type StoreDef struct {
	Path string `yaml:"path" json:"path"`
}
