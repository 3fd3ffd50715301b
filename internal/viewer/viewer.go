// Package viewer is the desktop window for a scene assembly. It is the
// assembly's Renderer: the assembly hands it frames, and the window
// draws the latest one flattened through scene2d.
package viewer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene2d"
)

const (
	WindowWidth  = 1280
	WindowHeight = 800

	// wheelDolly is the distance factor for one wheel notch.
	wheelDolly = 0.95
)

var rainColor = color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0x99}

// Options configures the window.
type Options struct {
	// FontTTF replaces the built-in HUD font. Thai status text needs a
	// font with Thai glyphs.
	FontTTF []byte
	Logger  logging.Logger
}

// Viewer drives an assembly from the ebiten game loop. Each Update steps
// the scheduler once, so frames run on the window's thread.
type Viewer struct {
	cfg   *config.Config
	sched *scene.ManualScheduler
	asm   *scene.Assembly
	log   logging.Logger
	opts  scene2d.Options

	mu     sync.Mutex
	frame  scene.Frame
	ready  bool
	closed bool

	width, height int
	face          text.Face
	panel         *panel
	white         *ebiten.Image
	ground        *ebiten.Image
	groundSrc     image.Image
	labels        map[string]*ebiten.Image

	dragging     bool
	lastX, lastY int
}

var _ scene.Renderer = (*Viewer)(nil)

// New creates a viewer stepping sched. Attach the assembly built with
// this viewer as its Renderer before calling Run.
func New(cfg *config.Config, sched *scene.ManualScheduler, opts Options) (*Viewer, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	ttf := opts.FontTTF
	if ttf == nil {
		ttf = goregular.TTF
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("loading HUD font: %w", err)
	}
	return &Viewer{
		cfg:    cfg,
		sched:  sched,
		log:    log.With(logging.String("component", "viewer")),
		opts:   scene2d.DefaultOptions(),
		width:  WindowWidth,
		height: WindowHeight,
		face:   &text.GoTextFace{Source: src, Size: 14},
		labels: make(map[string]*ebiten.Image),
	}, nil
}

// Attach binds the assembly the window controls.
func (v *Viewer) Attach(asm *scene.Assembly) {
	v.asm = asm
	v.panel = newPanel(v.face, v.cfg.Scene.Water, v.setWaterLevel)
}

// Render keeps the frame for the next Draw.
func (v *Viewer) Render(f scene.Frame) {
	v.mu.Lock()
	v.frame = f
	v.ready = true
	v.mu.Unlock()
}

// Close ends the game loop at the next Update.
func (v *Viewer) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Run opens the window and blocks until it closes.
func (v *Viewer) Run() error {
	if v.asm == nil {
		return fmt.Errorf("viewer: no assembly attached")
	}
	ebiten.SetWindowTitle(v.cfg.Name)
	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if v.cfg.Scene.FrameRate > 0 {
		ebiten.SetTPS(v.cfg.Scene.FrameRate)
	}
	v.log.Info(context.Background(), "window opened", logging.String("session", v.asm.SessionID()))
	return ebiten.RunGame(v)
}

func (v *Viewer) Update() error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return ebiten.Termination
	}

	v.handleInput()
	v.panel.update()
	v.sched.Step(time.Now())
	return nil
}

// handleInput turns drags and the wheel into orbit input. Drags that
// start over the panel belong to the panel.
func (v *Viewer) handleInput() {
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !v.dragging {
			if v.panel.contains(x, y) {
				return
			}
			v.dragging = true
		} else {
			h := float64(v.height)
			dx, dy := float64(x-v.lastX), float64(y-v.lastY)
			v.asm.Orbit(-2*math.Pi*dx/h, -2*math.Pi*dy/h, 1)
		}
		v.lastX, v.lastY = x, y
	} else {
		v.dragging = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		v.asm.Orbit(0, 0, math.Pow(wheelDolly, wy))
	}
}

func (v *Viewer) setWaterLevel(level float64) {
	if err := v.asm.SetWaterLevel(level); err != nil {
		v.log.Warn(context.Background(), "water level rejected",
			logging.Float("level", level), logging.Err(err))
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	v.mu.Lock()
	f, ready := v.frame, v.ready
	v.mu.Unlock()

	if !ready {
		screen.Fill(color.NRGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff})
		v.drawHUD(screen)
		return
	}

	s := scene2d.Assemble2D(f, float64(v.width), float64(v.height), v.opts)
	screen.Fill(s.Background)
	v.syncGround(f.Graph)
	v.drawTriangles(screen, s.Triangles)
	for _, d := range s.Rain {
		vector.DrawFilledRect(screen, d.X-d.Size/2, d.Y-d.Size/2, d.Size, d.Size, rainColor, false)
	}
	v.drawLabels(screen, s.Labels)
	v.drawHUD(screen)
	v.panel.draw(screen)
}

func (v *Viewer) Layout(outsideW, outsideH int) (int, int) {
	v.width, v.height = outsideW, outsideH
	return outsideW, outsideH
}

func (v *Viewer) syncGround(g *scene.LiveGraph) {
	img := g.GroundTexture()
	if img == v.groundSrc {
		return
	}
	if v.ground != nil {
		v.ground.Deallocate()
		v.ground = nil
	}
	v.groundSrc = img
	if img != nil {
		v.ground = ebiten.NewImageFromImage(img)
	}
}

func (v *Viewer) whiteImage() *ebiten.Image {
	if v.white == nil {
		v.white = ebiten.NewImage(3, 3)
		v.white.Fill(color.White)
	}
	return v.white
}

// drawTriangles paints back to front, batching runs that share a source
// image.
func (v *Viewer) drawTriangles(screen *ebiten.Image, tris []scene2d.Triangle) {
	var (
		vs  []ebiten.Vertex
		is  []uint16
		src *ebiten.Image
	)
	flush := func() {
		if len(is) == 0 {
			return
		}
		op := &ebiten.DrawTrianglesOptions{}
		if src == v.ground {
			op.Address = ebiten.AddressRepeat
		}
		screen.DrawTriangles(vs, is, src, op)
		vs, is = vs[:0], is[:0]
	}

	for _, t := range tris {
		img := v.whiteImage()
		if t.Fill == scene2d.FillGround && v.ground != nil {
			img = v.ground
		}
		if img != src || len(vs)+3 > math.MaxUint16 {
			flush()
			src = img
		}

		sw, sh := float32(img.Bounds().Dx()), float32(img.Bounds().Dy())
		base := uint16(len(vs))
		for k := 0; k < 3; k++ {
			vx := ebiten.Vertex{
				DstX:   t.X[k],
				DstY:   t.Y[k],
				SrcX:   1,
				SrcY:   1,
				ColorR: float32(t.Color.R) / 255,
				ColorG: float32(t.Color.G) / 255,
				ColorB: float32(t.Color.B) / 255,
				ColorA: float32(t.Color.A) / 255,
			}
			if img == v.ground {
				vx.SrcX, vx.SrcY = t.UV[k][0]*sw, t.UV[k][1]*sh
			}
			vs = append(vs, vx)
			is = append(is, base+uint16(k))
		}
	}
	flush()
}

func (v *Viewer) drawLabels(screen *ebiten.Image, labels []scene2d.Billboard) {
	for _, b := range labels {
		img, ok := v.labels[b.Sprite.ID]
		if !ok {
			if b.Sprite.Texture == nil {
				continue
			}
			img = ebiten.NewImageFromImage(b.Sprite.Texture)
			v.labels[b.Sprite.ID] = img
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(b.W)/float64(w), float64(b.H)/float64(h))
		op.GeoM.Translate(float64(b.X), float64(b.Y))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	lines := []string{v.cfg.Name}
	if v.asm != nil {
		p := v.asm.Progress()
		if !p.Done {
			lines = append(lines, fmt.Sprintf("Loading data %d/%d", p.Step, p.Total))
		}
		d, _ := v.asm.Dashboard()
		if d.Weather.Available {
			lines = append(lines, fmt.Sprintf("Weather %.1f C, rain %.1f mm", d.Weather.Temperature, d.Weather.PrecipitationMM))
		}
		lines = append(lines,
			fmt.Sprintf("River discharge %.1f m3/s", d.River.Discharge),
			fmt.Sprintf("Flood areas %d", d.Flood.AffectedCount),
			fmt.Sprintf("Water %.1f m: %s", d.WaterLevel, d.Alert.Level),
		)
	}

	y := 10.0
	for _, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(v.width)-320, y)
		op.ColorScale.ScaleWithColor(color.Black)
		text.Draw(screen, l, v.face, op)
		y += 20
	}
}

// Dispose frees the window's GPU images. Call it after Run returns.
func (v *Viewer) Dispose() {
	for id, img := range v.labels {
		img.Deallocate()
		delete(v.labels, id)
	}
	if v.ground != nil {
		v.ground.Deallocate()
		v.ground = nil
	}
}
