package render

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// DefaultTileSize is the ground tile edge in pixels.
const DefaultTileSize = 20

// groundRGB is ColorGround as components.
var groundRGB = [3]int{0x70, 0xad, 0x47}

// Tile is one square of shaded ground in pixel coordinates.
type Tile struct {
	X, Y  int
	Size  int
	Shade float64 // in [0, 1]
	Color string
}

// GroundTiles covers a width×height canvas with tiles whose brightness
// follows layered opensimplex noise. The same seed always yields the same
// tiles.
func GroundTiles(width, height, size int, seed int64) []Tile {
	if size <= 0 {
		size = DefaultTileSize
	}
	noise := opensimplex.NewNormalized(seed)

	var tiles []Tile
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			shade := octaveNoise(noise, float64(x)/float64(width), float64(y)/float64(height), 3, 4, 0.5)
			tiles = append(tiles, Tile{
				X:     x,
				Y:     y,
				Size:  size,
				Shade: shade,
				Color: shadeGround(shade),
			})
		}
	}
	return tiles
}

// shadeGround darkens or lightens the ground color by up to 12%.
func shadeGround(shade float64) string {
	f := 0.88 + 0.24*shade
	var c [3]int
	for i, v := range groundRGB {
		c[i] = clamp(int(float64(v)*f+0.5), 0, 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// octaveNoise layers octaves of normalized noise and rescales to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
