// Package canvas holds the persistent drawing surface that accumulates
// committed strokes and shapes, and serializes it to image files.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// Default surface dimensions.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Background is the colour the canvas is cleared to.
var Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ErrEncode is returned when a surface cannot be written to disk.
var ErrEncode = errors.New("canvas: encode failed")

// ErrUnsupportedFormat is returned when a save path has an unknown extension.
var ErrUnsupportedFormat = errors.New("canvas: unsupported image format")

// ShapeKind identifies the geometry of a committed or previewed shape.
type ShapeKind int

const (
	ShapeLine ShapeKind = iota
	ShapeCircle
	ShapeRectangle
)

// String returns the shape name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeLine:
		return "line"
	case ShapeCircle:
		return "circle"
	case ShapeRectangle:
		return "rectangle"
	default:
		return "unknown"
	}
}

// Shape is a two-point primitive. For circles From is the centre and the
// radius is the distance to To; for rectangles the points are opposite corners.
type Shape struct {
	Kind      ShapeKind
	From      image.Point
	To        image.Point
	Color     color.RGBA
	Thickness int
}

// Radius returns the circle radius implied by the two points, truncated.
func (s Shape) Radius() int {
	dx := float64(s.To.X - s.From.X)
	dy := float64(s.To.Y - s.From.Y)
	return int(math.Hypot(dx, dy))
}

// Bounds returns the canonical rectangle spanned by the two points.
func (s Shape) Bounds() image.Rectangle {
	return image.Rectangle{Min: s.From, Max: s.To}.Canon()
}

// Surface is the write-only raster the engine draws onto.
// Pixels are never read back by the engine.
type Surface interface {
	// Clear resets every pixel to Background.
	Clear() error
	// DrawSegment strokes a straight segment with round caps.
	DrawSegment(from, to image.Point, c color.RGBA, thickness int) error
	// CommitShape draws a finalized shape outline.
	CommitShape(s Shape) error
	// Save serializes the surface. The format follows the path extension.
	Save(path string) error
	// Size returns the fixed surface dimensions.
	Size() image.Point
	// Close releases the surface buffer.
	Close() error
}

func clampThickness(t int) int {
	if t < 1 {
		return 1
	}
	return t
}
