package panel

import "image/color"

// Swatch is one selectable palette colour.
// Eraser marks the sentinel swatch that paints the background colour with
// a wide stroke instead of drawing.
type Swatch struct {
	Name   string     `json:"name"`
	Color  color.RGBA `json:"color"`
	Eraser bool       `json:"eraser"`
}

// DefaultPalette is black, red, green, blue, yellow and the white eraser.
var DefaultPalette = []Swatch{
	{Name: "black", Color: color.RGBA{R: 0, G: 0, B: 0, A: 255}},
	{Name: "red", Color: color.RGBA{R: 255, G: 0, B: 0, A: 255}},
	{Name: "green", Color: color.RGBA{R: 0, G: 255, B: 0, A: 255}},
	{Name: "blue", Color: color.RGBA{R: 0, G: 0, B: 255, A: 255}},
	{Name: "yellow", Color: color.RGBA{R: 255, G: 255, B: 0, A: 255}},
	{Name: "eraser", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Eraser: true},
}
