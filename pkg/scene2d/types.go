package scene2d

import (
	"image/color"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
)

// Scene2D is one frame of the 3D scene flattened to screen space and
// ordered back to front, ready for a rasterizer without a depth buffer.
type Scene2D struct {
	Width      float64
	Height     float64
	Background color.NRGBA
	Triangles  []Triangle
	Rain       []Drop
	Labels     []Billboard
}

// Fill selects what a triangle is painted with.
type Fill int

const (
	FillSolid Fill = iota
	// FillGround samples the ground texture at UV, in tile repeats.
	FillGround
)

// Triangle is a shaded, projected triangle. Depth is the camera distance
// of its centroid.
type Triangle struct {
	X, Y  [3]float32
	UV    [3][2]float32
	Fill  Fill
	Color color.NRGBA
	Depth float64
	ID    string
}

// Drop is a rain particle in pixels.
type Drop struct {
	X, Y float32
	Size float32
}

// Billboard is a label sprite sized for the screen. X and Y are the top
// left corner.
type Billboard struct {
	X, Y   float32
	W, H   float32
	Depth  float64
	Sprite *label.Sprite
}

// Options tunes the flattening.
type Options struct {
	// PlaneCells subdivides ground and water planes so the parts behind
	// the camera can be dropped without losing the visible rest.
	PlaneCells int
	// Sun is the direction towards the key light.
	Sun [3]float64
	// Ambient is the brightness of faces turned away from the sun.
	Ambient float64
}

// DefaultOptions match the scene's sun and hemisphere light.
func DefaultOptions() Options {
	return Options{
		PlaneCells: 24,
		Sun:        [3]float64{100, 500, 100},
		Ambient:    0.55,
	}
}
