package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
)

// unit is the number of SVG user units per canvas pixel. Drawing on a finer
// grid keeps small shapes like fruit round under integer coordinates.
const unit = 10

// Options control SVG output.
type Options struct {
	Width   int
	Height  int
	Debug   bool
	Texture bool  // noise-shaded ground tiles instead of a flat fill
	Seed    int64 // ground texture seed
	Title   string
}

// DefaultOptions returns an 800×800 render with a flat ground.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, Title: "Village"}
}

// Aspect returns width/height.
func (o Options) Aspect() float64 {
	return float64(o.Width) / float64(o.Height)
}

// ToPixel maps a normalized point to canvas pixels with Y down.
func (o Options) ToPixel(p geo.Point2D) (float64, float64) {
	return (p.X + 1) / 2 * float64(o.Width), (1 - p.Y) / 2 * float64(o.Height)
}

func (o Options) units(p geo.Point2D) (int, int) {
	px, py := o.ToPixel(p)
	return int(math.Round(px * unit)), int(math.Round(py * unit))
}

// SVG draws the scene onto w.
func SVG(w io.Writer, s *layout.Scene, opts Options) error {
	if s == nil {
		return fmt.Errorf("render: nil scene")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("render: canvas %dx%d must be positive", opts.Width, opts.Height)
	}

	canvas := svg.New(w)
	canvas.Startview(opts.Width, opts.Height, 0, 0, opts.Width*unit, opts.Height*unit)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	canvas.Gid("ground")
	if opts.Texture {
		for _, t := range GroundTiles(opts.Width, opts.Height, DefaultTileSize, opts.Seed) {
			canvas.Rect(t.X*unit, t.Y*unit, t.Size*unit, t.Size*unit, "fill:"+t.Color)
		}
	} else {
		canvas.Rect(0, 0, opts.Width*unit, opts.Height*unit, "fill:"+ColorGround)
	}
	canvas.Gend()

	for _, part := range SceneParts(s, opts.Aspect(), opts.Debug) {
		xs, ys := make([]int, len(part.Points)), make([]int, len(part.Points))
		for i, p := range part.Points {
			xs[i], ys[i] = opts.units(p)
		}
		style := "fill:" + part.Color
		if part.Outline {
			style = fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d", part.Color, unit)
		}
		canvas.Polygon(xs, ys, style, fmt.Sprintf(`class="%s"`, part.Kind))
	}

	canvas.End()
	return nil
}
