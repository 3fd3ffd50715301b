package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ebitenui/ebitenui"
	uiimage "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
)

// panel is the water-level control in the top-left corner.
type panel struct {
	ui        *ebitenui.UI
	container *widget.Container
	face      text.Face
	value     *widget.Text
}

// newPanel builds a slider over the water range in whole steps. onChange
// receives the level in meters.
func newPanel(face text.Face, water config.WaterRange, onChange func(float64)) *panel {
	p := &panel{face: face}

	p.container = widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(10)),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.BackgroundImage(solid(color.RGBA{30, 35, 45, 230}, 1, 1)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				Padding:            widget.NewInsetsSimple(10),
			}),
			widget.WidgetOpts.MinSize(300, 0),
		),
	)

	p.container.AddChild(p.text("WATER LEVEL", color.RGBA{255, 220, 100, 255}))
	p.container.AddChild(p.slider(water, onChange))
	p.container.AddChild(p.text("Drag to orbit, wheel to zoom", color.RGBA{128, 128, 128, 255}))

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(p.container)
	p.ui = &ebitenui.UI{Container: root}
	return p
}

func (p *panel) text(s string, clr color.Color) *widget.Text {
	return widget.NewText(
		widget.TextOpts.Text(s, p.face, clr),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true}),
		),
	)
}

func (p *panel) slider(water config.WaterRange, onChange func(float64)) *widget.Container {
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(10),
		)),
	)

	step := water.Step
	if step <= 0 {
		step = 0.5
	}
	steps := int(math.Round((water.Max - water.Min) / step))

	p.value = widget.NewText(
		widget.TextOpts.Text(formatLevel(water.Min), p.face, color.RGBA{255, 255, 255, 255}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.MinSize(60, 0)),
	)

	s := widget.NewSlider(
		widget.SliderOpts.Direction(widget.DirectionHorizontal),
		widget.SliderOpts.MinMax(0, steps),
		widget.SliderOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(200, 24),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
		widget.SliderOpts.Images(
			&widget.SliderTrackImage{
				Idle:  solid(color.RGBA{80, 80, 100, 255}, 32, 8),
				Hover: solid(color.RGBA{100, 100, 120, 255}, 32, 8),
			},
			&widget.ButtonImage{
				Idle:    solid(color.RGBA{59, 130, 246, 255}, 20, 20),
				Hover:   solid(color.RGBA{96, 165, 250, 255}, 20, 20),
				Pressed: solid(color.RGBA{147, 197, 253, 255}, 20, 20),
			},
		),
		widget.SliderOpts.PageSizeFunc(func() int { return 1 }),
		widget.SliderOpts.ChangedHandler(func(args *widget.SliderChangedEventArgs) {
			level := water.Min + float64(args.Current)*step
			p.value.Label = formatLevel(level)
			onChange(level)
		}),
	)
	s.Current = 0

	row.AddChild(s)
	row.AddChild(p.value)
	return row
}

func (p *panel) update() {
	p.ui.Update()
}

func (p *panel) draw(screen *ebiten.Image) {
	p.ui.Draw(screen)
}

// contains reports whether the cursor is over the panel.
func (p *panel) contains(x, y int) bool {
	return image.Pt(x, y).In(p.container.GetWidget().Rect)
}

func solid(c color.Color, w, h int) *uiimage.NineSlice {
	img := ebiten.NewImage(w, h)
	img.Fill(c)
	if w == 1 && h == 1 {
		return uiimage.NewNineSliceSimple(img, 0, 0)
	}
	return uiimage.NewNineSliceSimple(img, 4, 4)
}

func formatLevel(v float64) string {
	return fmt.Sprintf("%.1f m", v)
}
