package label

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

const (
	TextureWidth  = 512
	TextureHeight = 128
	FontSize      = 40
	OutlineWidth  = 8
	// RenderOrder draws labels after all scene geometry.
	RenderOrder = 999
	// Lift is the vertical gap between anchor and sprite.
	Lift = 15
)

var (
	outlineColor = color.NRGBA{R: 0, G: 0, B: 0, A: 204}
	fillColor    = color.White

	// Scale is the world size of every label sprite.
	Scale = geo.V3(40, 10, 1)
)

// ErrInert is returned when encoding a sprite that has no texture.
var ErrInert = errors.New("label: sprite has no texture")

// Sprite is a camera-facing text billboard.
type Sprite struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Position    geo.Vec3    `json:"position"`
	Scale       geo.Vec3    `json:"scale"`
	RenderOrder int         `json:"render_order"`
	DepthTest   bool        `json:"depth_test"`
	Transparent bool        `json:"transparent"`
	Visible     bool        `json:"visible"`
	Texture     *image.RGBA `json:"-"`
}

// Inert reports whether the sprite draws nothing.
func (s *Sprite) Inert() bool {
	return s == nil || !s.Visible || s.Texture == nil
}

// PNG encodes the sprite texture.
func (s *Sprite) PNG() ([]byte, error) {
	if s.Inert() {
		return nil, ErrInert
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Texture); err != nil {
		return nil, fmt.Errorf("encoding label %s: %w", s.ID, err)
	}
	return buf.Bytes(), nil
}

// Release drops the texture. The sprite stays safe to use but is inert.
func (s *Sprite) Release() {
	s.Texture = nil
	s.Visible = false
}

// Builder rasterizes label text. A nil Builder is valid and produces
// inert sprites.
type Builder struct {
	font    *opentype.Font
	face    font.Face
	ascent  fixed.Int26_6
	descent fixed.Int26_6
	stamps  []image.Point
}

// NewBuilder loads the bundled Go Bold face.
func NewBuilder() (*Builder, error) {
	return NewBuilderFromTTF(gobold.TTF)
}

// NewBuilderFromTTF loads a TrueType or OpenType font, for example one
// with Thai coverage.
func NewBuilderFromTTF(data []byte) (*Builder, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating label face: %w", err)
	}
	m := face.Metrics()
	return &Builder{
		font:    f,
		face:    face,
		ascent:  m.Ascent,
		descent: m.Descent,
		stamps:  discOffsets(OutlineWidth / 2),
	}, nil
}

// Build renders text centered on the texture and places the sprite above
// anchor. Without a usable face, or for empty text, the sprite is inert.
func (b *Builder) Build(id, text string, anchor geo.Vec3) *Sprite {
	s := &Sprite{
		ID:          id,
		Text:        text,
		Position:    anchor.Add(geo.V3(0, Lift, 0)),
		Scale:       Scale,
		RenderOrder: RenderOrder,
		DepthTest:   false,
		Transparent: true,
	}
	if b == nil || b.face == nil || text == "" {
		return s
	}
	s.Texture = b.raster(text)
	s.Visible = true
	return s
}

// Covers reports whether the face has a glyph for every non-space rune
// of text.
func (b *Builder) Covers(text string) bool {
	if b == nil || b.font == nil {
		return false
	}
	var buf sfnt.Buffer
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if i, err := b.font.GlyphIndex(&buf, r); err != nil || i == 0 {
			return false
		}
	}
	return true
}

// Pick returns the first non-empty candidate the face can draw. When none
// fits it returns the first non-empty candidate, which then renders as
// missing-glyph boxes.
func (b *Builder) Pick(candidates ...string) string {
	first := ""
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if b.Covers(c) {
			return c
		}
		if first == "" {
			first = c
		}
	}
	return first
}

func (b *Builder) raster(text string) *image.RGBA {
	rect := image.Rect(0, 0, TextureWidth, TextureHeight)
	dst := image.NewRGBA(rect)

	width := font.MeasureString(b.face, text)
	dot := fixed.Point26_6{
		X: fixed.I(TextureWidth/2) - width/2,
		Y: fixed.I(TextureHeight/2) + (b.ascent-b.descent)/2,
	}

	// Stroke: stamp the glyph mask around a disc, then tint it once so
	// overlapping stamps do not darken.
	mask := image.NewAlpha(rect)
	d := &font.Drawer{Dst: mask, Src: image.Opaque, Face: b.face}
	for _, off := range b.stamps {
		d.Dot = dot.Add(fixed.P(off.X, off.Y))
		d.DrawString(text)
	}
	draw.DrawMask(dst, rect, image.NewUniform(outlineColor), image.Point{}, mask, image.Point{}, draw.Over)

	d = &font.Drawer{Dst: dst, Src: image.NewUniform(fillColor), Face: b.face, Dot: dot}
	d.DrawString(text)
	return dst
}

func discOffsets(r int) []image.Point {
	var pts []image.Point
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}
