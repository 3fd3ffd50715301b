package scene2d

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene"
)

// Assemble2D flattens a frame onto a w×h viewport. Triangles with a
// vertex outside the camera's depth range are dropped, as are triangles
// entirely off screen. Labels are always drawn over the geometry.
func Assemble2D(f scene.Frame, w, h float64, opts Options) *Scene2D {
	env := f.Graph.Environment()
	sky, err := ParseHex(env.Background)
	if err != nil {
		sky = color.NRGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
	}
	fog, err := ParseHex(env.Fog.Color)
	if err != nil {
		fog = sky
	}
	if opts.PlaneCells < 1 {
		opts.PlaneCells = 1
	}

	a := &assembler{
		out:     &Scene2D{Width: w, Height: h, Background: sky},
		cam:     f.Camera,
		w:       w,
		h:       h,
		focal:   h / 2 / math.Tan(f.Camera.FOV*math.Pi/360),
		sun:     geo.V3(opts.Sun[0], opts.Sun[1], opts.Sun[2]).Unit(),
		ambient: opts.Ambient,
		cells:   opts.PlaneCells,
		fog:     fog,
		density: env.Fog.Density,
		repeat:  float64(env.GroundRepeat),
		tex:     env.GroundTexture,
	}

	f.Graph.Each(func(e *scene.Entity) {
		switch {
		case e.Mesh != nil:
			a.mesh(e)
		case e.Sprite != nil:
			a.sprite(e.Sprite)
		}
	})
	a.rain(f.Graph.RainDrops(nil))

	tris := a.out.Triangles
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].Depth > tris[j].Depth })
	labels := a.out.Labels
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Depth > labels[j].Depth })
	return a.out
}

type assembler struct {
	out     *Scene2D
	cam     scene.Camera
	w, h    float64
	focal   float64
	sun     geo.Vec3
	ambient float64
	cells   int
	fog     color.NRGBA
	density float64
	repeat  float64
	tex     bool
}

func (a *assembler) mesh(e *scene.Entity) {
	m := e.Mesh
	base, err := ParseHex(m.Material.Color)
	if err != nil {
		base = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	base.A = uint8(math.Round(clamp01(m.Material.Opacity) * 255))

	if m.Kind == mesh.KindGround || m.Kind == mesh.KindWater {
		a.plane(e, base)
		return
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		var p [3]geo.Vec3
		for k := range p {
			p[k] = m.Positions[m.Indices[i+k]].Add(e.Position)
		}
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Unit()
		a.triangle(e.ID, p, n, base, FillSolid, [3][2]float32{})
	}
}

// plane redraws a flat mesh as a grid over its bounds.
func (a *assembler) plane(e *scene.Entity, base color.NRGBA) {
	b := e.Mesh.Bounds
	if b.IsEmpty() {
		return
	}
	y := b.Min.Y + e.Position.Y
	sx := (b.Max.X - b.Min.X) / float64(a.cells)
	sz := (b.Max.Z - b.Min.Z) / float64(a.cells)
	up := geo.V3(0, 1, 0)

	fill := FillSolid
	if e.Mesh.Kind == mesh.KindGround && a.tex {
		fill = FillGround
	}
	uv := func(p geo.Vec3) [2]float32 {
		return [2]float32{
			float32((p.X - b.Min.X) / (b.Max.X - b.Min.X) * a.repeat),
			float32((p.Z - b.Min.Z) / (b.Max.Z - b.Min.Z) * a.repeat),
		}
	}

	for i := 0; i < a.cells; i++ {
		for j := 0; j < a.cells; j++ {
			x0, z0 := b.Min.X+float64(i)*sx, b.Min.Z+float64(j)*sz
			c := [4]geo.Vec3{
				geo.V3(x0, y, z0),
				geo.V3(x0+sx, y, z0),
				geo.V3(x0+sx, y, z0+sz),
				geo.V3(x0, y, z0+sz),
			}
			for _, t := range [2][3]int{{0, 2, 1}, {0, 3, 2}} {
				p := [3]geo.Vec3{c[t[0]], c[t[1]], c[t[2]]}
				a.triangle(e.ID, p, up, base, fill, [3][2]float32{uv(p[0]), uv(p[1]), uv(p[2])})
			}
		}
	}
}

func (a *assembler) triangle(id string, p [3]geo.Vec3, n geo.Vec3, base color.NRGBA, fill Fill, uv [3][2]float32) {
	var t Triangle
	for k := range p {
		x, y, ok := a.cam.Project(p[k], a.w, a.h)
		if !ok {
			return
		}
		t.X[k], t.Y[k] = float32(x), float32(y)
	}
	if offscreen(t.X, float32(a.w)) || offscreen(t.Y, float32(a.h)) {
		return
	}

	centroid := p[0].Add(p[1]).Add(p[2]).Scale(1.0 / 3)
	t.Depth = centroid.Sub(a.cam.Position).Length()
	t.ID = id
	t.Fill = fill
	t.UV = uv

	light := a.ambient + (1-a.ambient)*math.Abs(n.Dot(a.sun))
	if fill == FillGround {
		base = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: base.A}
	}
	t.Color = a.fogged(shade(base, light), t.Depth)
	a.out.Triangles = append(a.out.Triangles, t)
}

func (a *assembler) sprite(s *label.Sprite) {
	if s.Inert() {
		return
	}
	x, y, ok := a.cam.Project(s.Position, a.w, a.h)
	if !ok {
		return
	}
	d := s.Position.Sub(a.cam.Position).Length()
	pw := float32(s.Scale.X * a.focal / d)
	ph := float32(s.Scale.Y * a.focal / d)
	a.out.Labels = append(a.out.Labels, Billboard{
		X:      float32(x) - pw/2,
		Y:      float32(y) - ph/2,
		W:      pw,
		H:      ph,
		Depth:  d,
		Sprite: s,
	})
}

func (a *assembler) rain(drops []geo.Vec3) {
	for _, p := range drops {
		x, y, ok := a.cam.Project(p, a.w, a.h)
		if !ok || x < 0 || y < 0 || x > a.w || y > a.h {
			continue
		}
		size := scene.RainMaterial.Size * a.focal / p.Sub(a.cam.Position).Length()
		a.out.Rain = append(a.out.Rain, Drop{
			X:    float32(x),
			Y:    float32(y),
			Size: float32(math.Max(1, size)),
		})
	}
}

// fogged blends c towards the fog color with exponential-squared falloff.
func (a *assembler) fogged(c color.NRGBA, dist float64) color.NRGBA {
	if a.density <= 0 {
		return c
	}
	k := a.density * dist
	f := 1 - math.Exp(-k*k)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-f) + float64(y)*f))
	}
	return color.NRGBA{R: mix(c.R, a.fog.R), G: mix(c.G, a.fog.G), B: mix(c.B, a.fog.B), A: c.A}
}

func shade(c color.NRGBA, k float64) color.NRGBA {
	k = clamp01(k)
	return color.NRGBA{
		R: uint8(math.Round(float64(c.R) * k)),
		G: uint8(math.Round(float64(c.G) * k)),
		B: uint8(math.Round(float64(c.B) * k)),
		A: c.A,
	}
}

func offscreen(v [3]float32, limit float32) bool {
	return (v[0] < 0 && v[1] < 0 && v[2] < 0) || (v[0] > limit && v[1] > limit && v[2] > limit)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseHex parses a CSS color in #rgb or #rrggbb form.
func ParseHex(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("scene2d: color %q has no # prefix", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("scene2d: color %q is not #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("scene2d: color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
