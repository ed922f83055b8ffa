// Package panel implements the in-canvas control panel: palette swatches,
// clear/grid/save/mode buttons and the thickness slider, together with the
// control state they mutate.
package panel

import (
	"image"
	"image/color"
	"math"
)

// Thickness defaults.
const (
	MinThickness     = 1
	MaxThickness     = 10
	DefaultThickness = 2
	EraserThickness  = 20
)

// Control identifies an interactive region.
type Control int

const (
	ControlNone Control = iota
	ControlSwatch
	ControlClear
	ControlGrid
	ControlSave
	ControlMode
	ControlSlider
)

// String returns the control name. Discrete controls use their name as the
// debounce action identifier.
func (c Control) String() string {
	switch c {
	case ControlSwatch:
		return "color"
	case ControlClear:
		return "clear"
	case ControlGrid:
		return "grid"
	case ControlSave:
		return "save"
	case ControlMode:
		return "mode"
	case ControlSlider:
		return "slider"
	default:
		return "none"
	}
}

// Hit is the result of hit-testing one point against the panel.
type Hit struct {
	Control Control
	// Swatch is the palette index for ControlSwatch.
	Swatch int
	// Thickness is the mapped slider value for ControlSlider.
	Thickness int
}

// State is the user-adjustable drawing state owned by the panel.
type State struct {
	ColorIndex  int  `json:"color_index"`
	Thickness   int  `json:"thickness"`
	GridEnabled bool `json:"grid_enabled"`
	MenuVisible bool `json:"menu_visible"`
}

// Config configures a Panel. Zero values fall back to defaults.
type Config struct {
	Layout           *Layout
	Palette          []Swatch
	MinThickness     int
	MaxThickness     int
	DefaultThickness int
}

// Panel holds the layout, palette and current control state.
type Panel struct {
	layout  Layout
	palette []Swatch
	min     int
	max     int
	state   State
}

// New creates a Panel. The initial state selects the first swatch with the
// default thickness, grid on and menu visible.
func New(cfg Config) *Panel {
	palette := cfg.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	lo, hi := cfg.MinThickness, cfg.MaxThickness
	if lo <= 0 {
		lo = MinThickness
	}
	if hi < lo {
		hi = MaxThickness
		if hi < lo {
			hi = lo
		}
	}
	layout := DefaultLayout(len(palette))
	if cfg.Layout != nil {
		layout = *cfg.Layout
	}
	def := cfg.DefaultThickness
	if def == 0 {
		def = DefaultThickness
	}

	p := &Panel{
		layout:  layout,
		palette: palette,
		min:     lo,
		max:     hi,
	}
	p.state = State{
		ColorIndex:  0,
		Thickness:   p.clamp(def),
		GridEnabled: true,
		MenuVisible: true,
	}
	return p
}

// Layout returns the panel geometry.
func (p *Panel) Layout() Layout { return p.layout }

// Palette returns the configured swatches.
func (p *Panel) Palette() []Swatch { return p.palette }

// ThicknessRange returns the inclusive thickness bounds.
func (p *Panel) ThicknessRange() (int, int) { return p.min, p.max }

// State returns a copy of the control state.
func (p *Panel) State() State { return p.state }

// SetState replaces the control state, clamping out-of-range values.
func (p *Panel) SetState(s State) {
	if s.ColorIndex < 0 || s.ColorIndex >= len(p.palette) {
		s.ColorIndex = 0
	}
	s.Thickness = p.clamp(s.Thickness)
	p.state = s
}

// Swatch returns the active swatch.
func (p *Panel) Swatch() Swatch { return p.palette[p.state.ColorIndex] }

// Color returns the active colour.
func (p *Panel) Color() color.RGBA { return p.Swatch().Color }

// SelectColor activates the swatch at index i. It reports false when i is
// out of range.
func (p *Panel) SelectColor(i int) bool {
	if i < 0 || i >= len(p.palette) {
		return false
	}
	p.state.ColorIndex = i
	return true
}

// SetThickness stores n clamped to the thickness range and returns the stored value.
func (p *Panel) SetThickness(n int) int {
	p.state.Thickness = p.clamp(n)
	return p.state.Thickness
}

// ToggleGrid flips the grid flag and returns the new value.
func (p *Panel) ToggleGrid() bool {
	p.state.GridEnabled = !p.state.GridEnabled
	return p.state.GridEnabled
}

// ToggleMenu flips menu visibility and returns the new value.
func (p *Panel) ToggleMenu() bool {
	p.state.MenuVisible = !p.state.MenuVisible
	return p.state.MenuVisible
}

// HitTest returns the control under pt without mutating state.
// Callers pass the stabilized point so jitter cannot flicker across controls.
func (p *Panel) HitTest(pt image.Point) Hit {
	if i := p.layout.swatchAt(pt); i >= 0 && i < len(p.palette) {
		return Hit{Control: ControlSwatch, Swatch: i}
	}
	switch {
	case inside(p.layout.Clear, pt):
		return Hit{Control: ControlClear}
	case inside(p.layout.Grid, pt):
		return Hit{Control: ControlGrid}
	case p.layout.onSlider(pt):
		return Hit{Control: ControlSlider, Thickness: p.ThicknessAt(pt.X)}
	case inside(p.layout.Save, pt):
		return Hit{Control: ControlSave}
	case inside(p.layout.Mode, pt):
		return Hit{Control: ControlMode}
	}
	return Hit{Control: ControlNone}
}

// ThicknessAt maps a horizontal position on the slider to a thickness.
// Positions outside the track clamp to its ends.
func (p *Panel) ThicknessAt(x int) int {
	span := p.layout.Slider.Dx()
	if span <= 0 {
		return p.min
	}
	norm := float64(x-p.layout.Slider.Min.X) / float64(span)
	norm = math.Max(0, math.Min(1, norm))
	return p.clamp(int(math.Round(float64(p.min) + norm*float64(p.max-p.min))))
}

// KnobX returns the slider knob position for the current thickness.
func (p *Panel) KnobX() int {
	if p.max == p.min {
		return p.layout.Slider.Min.X
	}
	return p.layout.Slider.Min.X + (p.state.Thickness-p.min)*p.layout.Slider.Dx()/(p.max-p.min)
}

func (p *Panel) clamp(n int) int {
	if n < p.min {
		return p.min
	}
	if n > p.max {
		return p.max
	}
	return n
}
