package panel

import "image"

// Default layout geometry for a 1280x720 surface.
const (
	SwatchRadius  = 20
	SwatchSpacing = 10
	SwatchStartX  = 50
	SwatchY       = 50
	SliderSlack   = 10
)

// Layout positions every interactive region of the panel.
type Layout struct {
	Swatches     []image.Point
	SwatchRadius int
	Clear        image.Rectangle
	Grid         image.Rectangle
	Save         image.Rectangle
	Mode         image.Rectangle
	Slider       image.Rectangle
	SliderSlack  int
}

// DefaultLayout returns the standard layout with n palette swatches laid out
// left to right along the top edge.
func DefaultLayout(n int) Layout {
	swatches := make([]image.Point, n)
	for i := range swatches {
		swatches[i] = image.Point{
			X: SwatchStartX + i*(2*SwatchRadius+SwatchSpacing),
			Y: SwatchY,
		}
	}
	return Layout{
		Swatches:     swatches,
		SwatchRadius: SwatchRadius,
		Clear:        image.Rect(1130, 50, 1230, 80),
		Grid:         image.Rect(1130, 100, 1230, 130),
		Save:         image.Rect(1130, 150, 1230, 180),
		Mode:         image.Rect(1130, 200, 1230, 230),
		Slider:       image.Rect(50, 100, 250, 120),
		SliderSlack:  SliderSlack,
	}
}

// inside reports strict containment: points on an edge do not hit.
func inside(r image.Rectangle, p image.Point) bool {
	return r.Min.X < p.X && p.X < r.Max.X && r.Min.Y < p.Y && p.Y < r.Max.Y
}

// onSlider is strict horizontally and allows vertical slack around the track.
func (l Layout) onSlider(p image.Point) bool {
	return l.Slider.Min.X < p.X && p.X < l.Slider.Max.X &&
		l.Slider.Min.Y-l.SliderSlack < p.Y && p.Y < l.Slider.Max.Y+l.SliderSlack
}

// swatchAt returns the index of the swatch under p, or -1.
func (l Layout) swatchAt(p image.Point) int {
	r2 := l.SwatchRadius * l.SwatchRadius
	for i, c := range l.Swatches {
		dx, dy := p.X-c.X, p.Y-c.Y
		if dx*dx+dy*dy < r2 {
			return i
		}
	}
	return -1
}
