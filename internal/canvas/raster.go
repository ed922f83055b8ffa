package canvas

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
)

// JPEGQuality is used when a surface is saved with a .jpg extension.
const JPEGQuality = 95

// RasterSurface is a pure-Go surface backed by a gg context. It needs no
// OpenCV build and is used for headless runs and the software backend.
type RasterSurface struct {
	dc *gg.Context
}

// NewRasterSurface creates a software surface cleared to Background.
func NewRasterSurface(width, height int) *RasterSurface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s := &RasterSurface{dc: gg.NewContext(width, height)}
	s.dc.ClearWithColor(gg.FromColor(Background))
	return s
}

// Image returns a snapshot of the surface pixels.
func (s *RasterSurface) Image() image.Image {
	return s.dc.Image()
}

// Clear resets the surface to Background.
func (s *RasterSurface) Clear() error {
	s.dc.ClearPath()
	s.dc.ClearWithColor(gg.FromColor(Background))
	return nil
}

// DrawSegment strokes a round-capped segment.
func (s *RasterSurface) DrawSegment(from, to image.Point, c color.RGBA, thickness int) error {
	s.pen(c, thickness)
	s.dc.DrawLine(float64(from.X), float64(from.Y), float64(to.X), float64(to.Y))
	return s.dc.Stroke()
}

// CommitShape strokes a shape outline.
func (s *RasterSurface) CommitShape(shape Shape) error {
	s.pen(shape.Color, shape.Thickness)
	switch shape.Kind {
	case ShapeLine:
		s.dc.DrawLine(float64(shape.From.X), float64(shape.From.Y), float64(shape.To.X), float64(shape.To.Y))
	case ShapeCircle:
		s.dc.DrawCircle(float64(shape.From.X), float64(shape.From.Y), float64(shape.Radius()))
	case ShapeRectangle:
		r := shape.Bounds()
		s.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	default:
		return fmt.Errorf("canvas: unknown shape kind %d", shape.Kind)
	}
	return s.dc.Stroke()
}

// Save writes PNG or JPEG depending on the path extension.
func (s *RasterSurface) Save(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := s.dc.SavePNG(path); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		return nil
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if err := s.dc.EncodeJPEG(f, JPEGQuality); err != nil {
			f.Close()
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Size returns the surface dimensions.
func (s *RasterSurface) Size() image.Point {
	return image.Point{X: s.dc.Width(), Y: s.dc.Height()}
}

// Close releases the gg context.
func (s *RasterSurface) Close() error {
	return s.dc.Close()
}

func (s *RasterSurface) pen(c color.RGBA, thickness int) {
	s.dc.ClearPath()
	s.dc.SetColor(c)
	s.dc.SetLineWidth(float64(clampThickness(thickness)))
	s.dc.SetLineCap(gg.LineCapRound)
}
