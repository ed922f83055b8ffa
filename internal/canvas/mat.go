package canvas

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// MatSurface is an OpenCV-backed surface. Its Mat is shared with the
// compositor for blending and must not be closed by callers.
type MatSurface struct {
	mat    gocv.Mat
	width  int
	height int
}

// NewMatSurface creates a surface of the given size cleared to Background.
func NewMatSurface(width, height int) *MatSurface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &MatSurface{
		mat:    gocv.NewMatWithSizeFromScalar(scalar(Background), height, width, gocv.MatTypeCV8UC3),
		width:  width,
		height: height,
	}
}

// Mat returns the backing matrix.
func (s *MatSurface) Mat() *gocv.Mat {
	return &s.mat
}

// Clear resets the surface to Background.
func (s *MatSurface) Clear() error {
	s.mat.SetTo(scalar(Background))
	return nil
}

// DrawSegment strokes a segment onto the surface.
func (s *MatSurface) DrawSegment(from, to image.Point, c color.RGBA, thickness int) error {
	gocv.Line(&s.mat, from, to, c, clampThickness(thickness))
	return nil
}

// CommitShape draws a shape outline onto the surface.
func (s *MatSurface) CommitShape(shape Shape) error {
	return DrawShape(&s.mat, shape)
}

// Save writes the surface with OpenCV's encoder for the path extension.
func (s *MatSurface) Save(path string) error {
	if !supportedExt(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if ok := gocv.IMWrite(path, s.mat); !ok {
		return fmt.Errorf("%w: %s", ErrEncode, path)
	}
	return nil
}

// Size returns the surface dimensions.
func (s *MatSurface) Size() image.Point {
	return image.Point{X: s.width, Y: s.height}
}

// Close releases the backing matrix.
func (s *MatSurface) Close() error {
	return s.mat.Close()
}

// DrawShape draws a shape outline onto any Mat. It is used both for committed
// shapes and for per-frame previews on the composited output.
func DrawShape(mat *gocv.Mat, shape Shape) error {
	thickness := clampThickness(shape.Thickness)
	switch shape.Kind {
	case ShapeLine:
		gocv.Line(mat, shape.From, shape.To, shape.Color, thickness)
	case ShapeCircle:
		gocv.Circle(mat, shape.From, shape.Radius(), shape.Color, thickness)
	case ShapeRectangle:
		gocv.Rectangle(mat, shape.Bounds(), shape.Color, thickness)
	default:
		return fmt.Errorf("canvas: unknown shape kind %d", shape.Kind)
	}
	return nil
}

func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), float64(c.A))
}

func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
