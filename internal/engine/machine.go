package engine

import (
	"image"
	"image/color"
	"time"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/gesture"
	"github.com/ayusman/airdraw/internal/panel"
)

// ActionCommit is the debounce identifier for shape commits.
const ActionCommit gesture.Action = "commit"

// Pending is a placed shape anchor awaiting its second point.
type Pending struct {
	Anchor image.Point `json:"anchor"`
	Mode   Mode        `json:"mode"`
}

// Stroke carries the drawing inputs for one draw-fingers-up frame.
type Stroke struct {
	Point     image.Point
	Pinching  bool
	Color     color.RGBA
	Eraser    bool
	Thickness int
}

// Machine is the drawing state machine. It owns the mode, the pending shape
// anchor and the previous freehand point, and is the only writer of the surface.
type Machine struct {
	surface         canvas.Surface
	gate            *gesture.Gate
	eraserThickness int

	mode    Mode
	pending *Pending
	last    *image.Point
}

// NewMachine creates a Machine in Freehand mode drawing onto surface.
func NewMachine(surface canvas.Surface, gate *gesture.Gate, eraserThickness int) *Machine {
	if eraserThickness <= 0 {
		eraserThickness = panel.EraserThickness
	}
	if gate == nil {
		gate = gesture.NewGate(gesture.DefaultCooldown)
	}
	return &Machine{
		surface:         surface,
		gate:            gate,
		eraserThickness: eraserThickness,
		mode:            ModeFreehand,
	}
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Pending returns the pending anchor, if any.
func (m *Machine) Pending() (Pending, bool) {
	if m.pending == nil {
		return Pending{}, false
	}
	return *m.pending, true
}

// SetMode switches mode. The pending shape is always cleared.
func (m *Machine) SetMode(mode Mode) {
	if mode < 0 || mode >= numModes {
		mode = ModeFreehand
	}
	m.mode = mode
	m.Abort()
}

// NextMode cycles forward and returns the new mode.
func (m *Machine) NextMode() Mode {
	m.SetMode(m.mode.Next())
	return m.mode
}

// Lift ends the current freehand stroke without touching the pending shape.
func (m *Machine) Lift() {
	m.last = nil
}

// Abort drops the pending shape and lifts the pen.
func (m *Machine) Abort() {
	m.pending = nil
	m.last = nil
}

// Clear wipes the surface and drops any in-progress shape.
func (m *Machine) Clear() error {
	m.Abort()
	return m.surface.Clear()
}

// Draw advances the machine for a frame in which drawing is authorized.
// It returns the non-committed preview shape, if any.
func (m *Machine) Draw(s Stroke, now time.Time) (*canvas.Shape, error) {
	kind, isShape := m.mode.Shape()
	if !isShape {
		return nil, m.freehand(s)
	}

	if m.pending == nil {
		m.pending = &Pending{Anchor: s.Point, Mode: m.mode}
		return nil, nil
	}

	shape := canvas.Shape{
		Kind:      kind,
		From:      m.pending.Anchor,
		To:        s.Point,
		Color:     s.Color,
		Thickness: s.Thickness,
	}
	if s.Pinching && m.gate.Allow(ActionCommit, now) {
		m.pending = nil
		return nil, m.surface.CommitShape(shape)
	}
	return &shape, nil
}

func (m *Machine) freehand(s Stroke) error {
	m.pending = nil
	prev := m.last
	pt := s.Point
	m.last = &pt
	if prev == nil {
		return nil
	}

	c, thickness := s.Color, s.Thickness
	switch {
	case s.Eraser:
		c, thickness = canvas.Background, m.eraserThickness
	case s.Pinching:
		thickness = max(1, thickness/2)
	}
	return m.surface.DrawSegment(*prev, pt, c, thickness)
}
