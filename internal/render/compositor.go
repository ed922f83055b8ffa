// Package render composites the camera frame, the persistent canvas and the
// transient UI overlays into the preview image shown to the user.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/panel"
	"gocv.io/x/gocv"
)

// Compositing defaults.
const (
	DefaultCanvasOpacity = 0.7
	DefaultGridSpacing   = 50
	StatusBarHeight      = 30
)

var (
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red        = color.RGBA{R: 255, A: 255}
	green      = color.RGBA{G: 255, A: 255}
	blue       = color.RGBA{B: 255, A: 255}
	gray       = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	gridColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	statusGray = color.RGBA{R: 50, G: 50, B: 50, A: 255}
)

// Instructions is the help text drawn while the menu is visible.
var Instructions = []string{
	"Air Drawing Tools:",
	"- Index finger: Move cursor",
	"- Index + Middle up: Draw",
	"- Pinch: Precision / commit shape",
	"- Make a fist: Toggle menu",
	"- Modes: Freehand/Line/Circle/Rectangle",
	"- Save your work with Save button",
}

// Config configures a Compositor.
type Config struct {
	Width  int
	Height int
	// CanvasOpacity is the canvas weight; the camera gets 1-CanvasOpacity.
	CanvasOpacity float64
	GridSpacing   int
}

// Compositor builds preview frames. It reuses internal buffers between
// frames and must be closed.
type Compositor struct {
	cfg    Config
	layer  gocv.Mat
	camera gocv.Mat
}

// NewCompositor creates a Compositor. Zero config values fall back to defaults.
func NewCompositor(cfg Config) *Compositor {
	if cfg.Width <= 0 {
		cfg.Width = canvas.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = canvas.DefaultHeight
	}
	if cfg.CanvasOpacity <= 0 || cfg.CanvasOpacity > 1 {
		cfg.CanvasOpacity = DefaultCanvasOpacity
	}
	if cfg.GridSpacing <= 0 {
		cfg.GridSpacing = DefaultGridSpacing
	}
	return &Compositor{
		cfg:    cfg,
		layer:  gocv.NewMat(),
		camera: gocv.NewMat(),
	}
}

// Size returns the output dimensions.
func (c *Compositor) Size() image.Point {
	return image.Point{X: c.cfg.Width, Y: c.cfg.Height}
}

// Compose renders one preview frame into dst. camera may be nil or empty, in
// which case the canvas is shown on its own.
func (c *Compositor) Compose(dst *gocv.Mat, camera *gocv.Mat, surface canvas.Surface, p *panel.Panel, f engine.Frame) error {
	if err := c.canvasLayer(surface); err != nil {
		return err
	}

	state := p.State()
	if state.GridEnabled {
		DrawGrid(&c.layer, c.cfg.GridSpacing)
	}

	if camera != nil && !camera.Empty() {
		if camera.Cols() != c.cfg.Width || camera.Rows() != c.cfg.Height {
			gocv.Resize(*camera, &c.camera, image.Pt(c.cfg.Width, c.cfg.Height), 0, 0, gocv.InterpolationLinear)
		} else {
			camera.CopyTo(&c.camera)
		}
		gocv.AddWeighted(c.camera, 1-c.cfg.CanvasOpacity, c.layer, c.cfg.CanvasOpacity, 0, dst)
	} else {
		c.layer.CopyTo(dst)
	}

	if state.MenuVisible {
		drawPanel(dst, p, f.Status.Mode)
		for i, line := range Instructions {
			gocv.PutText(dst, line, image.Pt(800, 300+i*30), gocv.FontHersheySimplex, 0.6, white, 1)
		}
	}

	if f.Preview != nil {
		if err := canvas.DrawShape(dst, *f.Preview); err != nil {
			return err
		}
	}
	if f.Cursor != nil {
		gocv.Circle(dst, f.Cursor.At, f.Cursor.Radius, f.Cursor.Color, -1)
	}
	if f.Message != "" {
		gocv.PutText(dst, f.Message, image.Pt(400, 400), gocv.FontHersheySimplex, 1, green, 2)
	}

	drawStatusBar(dst, p, f.Status, c.cfg.Width)
	return nil
}

// Close releases the internal buffers.
func (c *Compositor) Close() error {
	c.camera.Close()
	return c.layer.Close()
}

// canvasLayer copies the surface pixels into the reusable layer buffer.
func (c *Compositor) canvasLayer(surface canvas.Surface) error {
	switch s := surface.(type) {
	case *canvas.MatSurface:
		s.Mat().CopyTo(&c.layer)
	case interface{ Image() image.Image }:
		mat, err := gocv.ImageToMatRGB(s.Image())
		if err != nil {
			return fmt.Errorf("failed to convert canvas image: %w", err)
		}
		mat.CopyTo(&c.layer)
		mat.Close()
	default:
		c.layer.Close()
		c.layer = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), c.cfg.Height, c.cfg.Width, gocv.MatTypeCV8UC3)
	}
	return nil
}

// DrawGrid draws display-only grid lines and the centre axes onto mat.
func DrawGrid(mat *gocv.Mat, spacing int) {
	w, h := mat.Cols(), mat.Rows()
	for x := 0; x < w; x += spacing {
		gocv.Line(mat, image.Pt(x, 0), image.Pt(x, h), gridColor, 1)
	}
	for y := 0; y < h; y += spacing {
		gocv.Line(mat, image.Pt(0, y), image.Pt(w, y), gridColor, 1)
	}
	gocv.Line(mat, image.Pt(w/2, 0), image.Pt(w/2, h), gray, 2)
	gocv.Line(mat, image.Pt(0, h/2), image.Pt(w, h/2), gray, 2)
}

func drawPanel(dst *gocv.Mat, p *panel.Panel, mode string) {
	layout := p.Layout()
	state := p.State()

	for i, sw := range p.Palette() {
		if i >= len(layout.Swatches) {
			break
		}
		center := layout.Swatches[i]
		gocv.Circle(dst, center, layout.SwatchRadius, sw.Color, -1)
		if i == state.ColorIndex {
			gocv.Circle(dst, center, layout.SwatchRadius+5, red, 2)
		}
	}

	button(dst, layout.Clear, red, "Clear", 25, 0.6)

	gridBG := gray
	if state.GridEnabled {
		gridBG = green
	}
	button(dst, layout.Grid, gridBG, "Grid", 35, 0.6)

	gocv.Rectangle(dst, layout.Slider, gray, -1)
	knob := image.Pt(p.KnobX(), (layout.Slider.Min.Y+layout.Slider.Max.Y)/2)
	gocv.Circle(dst, knob, 10, red, -1)
	gocv.PutText(dst, "Thickness", image.Pt(layout.Slider.Min.X, layout.Slider.Min.Y-10), gocv.FontHersheySimplex, 0.6, white, 2)

	button(dst, layout.Save, blue, "Save", 35, 0.6)
	button(dst, layout.Mode, red, mode, 10, 0.5)
}

func button(dst *gocv.Mat, r image.Rectangle, bg color.RGBA, label string, inset int, scale float64) {
	gocv.Rectangle(dst, r, bg, -1)
	gocv.PutText(dst, label, image.Pt(r.Min.X+inset, r.Min.Y+20), gocv.FontHersheySimplex, scale, white, 2)
}

func drawStatusBar(dst *gocv.Mat, p *panel.Panel, s engine.Status, width int) {
	gocv.Rectangle(dst, image.Rect(0, 0, width, StatusBarHeight), statusGray, -1)

	gocv.PutText(dst, "Mode: "+s.Mode, image.Pt(10, 20), gocv.FontHersheySimplex, 0.6, white, 1)
	gocv.PutText(dst, "Color:", image.Pt(200, 20), gocv.FontHersheySimplex, 0.6, white, 1)
	gocv.Circle(dst, image.Pt(260, 15), 10, p.Color(), -1)
	gocv.PutText(dst, fmt.Sprintf("Thickness: %d", s.Thickness), image.Pt(300, 20), gocv.FontHersheySimplex, 0.6, white, 1)

	grid := "Grid: Off"
	if s.GridEnabled {
		grid = "Grid: On"
	}
	gocv.PutText(dst, grid, image.Pt(450, 20), gocv.FontHersheySimplex, 0.6, white, 1)

	menu := "Menu: Off (make fist to show)"
	if s.MenuVisible {
		menu = "Menu: On"
	}
	gocv.PutText(dst, menu, image.Pt(550, 20), gocv.FontHersheySimplex, 0.6, white, 1)

	if !s.Enabled {
		gocv.PutText(dst, "PAUSED", image.Pt(width-110, 20), gocv.FontHersheySimplex, 0.6, red, 2)
	}
}
