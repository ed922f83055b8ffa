// Package engine is the per-frame drawing core. It turns detected hands into
// stabilized cursor motion, gesture events, panel interactions and canvas
// mutations, one frame at a time.
package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/detector"
	"github.com/ayusman/airdraw/internal/gesture"
	"github.com/ayusman/airdraw/internal/panel"
)

// ActionMenu is the debounce identifier for menu visibility toggles.
const ActionMenu gesture.Action = "menu"

// Default cooldowns.
const (
	DefaultMenuCooldown   = time.Second
	DefaultActionCooldown = gesture.DefaultCooldown
)

// Cursor radii for the move-only pointer.
const (
	CursorRadius          = 10
	CursorPrecisionRadius = 5
)

// Saver persists the surface and returns the written path.
type Saver interface {
	Save(surface canvas.Surface, mode Mode, now time.Time) (string, error)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(surface canvas.Surface, mode Mode, now time.Time) (string, error)

// Save calls f.
func (f SaverFunc) Save(surface canvas.Surface, mode Mode, now time.Time) (string, error) {
	return f(surface, mode, now)
}

// ExportSaver writes timestamped files into Dir.
type ExportSaver struct {
	Dir    string
	Format string
}

// Save exports the surface to Dir.
func (s ExportSaver) Save(surface canvas.Surface, _ Mode, now time.Time) (string, error) {
	return canvas.Export(surface, s.Dir, s.Format, now)
}

// Config configures an Engine.
type Config struct {
	// Smoothing is the stabilizer weight in [0,1]. Unlike the other fields,
	// zero is used as given and turns stabilization off; start from
	// DefaultConfig to get the standard 0.5.
	Smoothing       float64
	History         int
	PinchThreshold  float64
	MenuCooldown    time.Duration
	ActionCooldown  time.Duration
	EraserThickness int
	Panel           panel.Config
	Logger          *slog.Logger
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Smoothing:       gesture.DefaultSmoothing,
		History:         gesture.DefaultHistory,
		PinchThreshold:  gesture.DefaultPinchThreshold,
		MenuCooldown:    DefaultMenuCooldown,
		ActionCooldown:  DefaultActionCooldown,
		EraserThickness: panel.EraserThickness,
	}
}

// Cursor is the move-only pointer drawn on the preview.
type Cursor struct {
	At     image.Point
	Radius int
	Color  color.RGBA
}

// Status is a serializable summary of the engine state.
type Status struct {
	Mode         string      `json:"mode"`
	Color        string      `json:"color"`
	ColorIndex   int         `json:"color_index"`
	Thickness    int         `json:"thickness"`
	GridEnabled  bool        `json:"grid_enabled"`
	MenuVisible  bool        `json:"menu_visible"`
	Enabled      bool        `json:"enabled"`
	Pending      bool        `json:"pending"`
	HandDetected bool        `json:"hand_detected"`
	Intent       string      `json:"intent"`
	Cursor       image.Point `json:"cursor"`
}

// Frame is the per-frame output consumed by the compositor.
type Frame struct {
	HandDetected bool
	Point        image.Point
	Snapshot     gesture.Snapshot
	Hit          panel.Hit
	Preview      *canvas.Shape
	Cursor       *Cursor
	Message      string
	Status       Status
}

// Engine wires the stabilizer, classifier, debounce gate, panel and state
// machine together. It is not safe for concurrent use: a single frame loop
// owns it and applies queued commands between frames.
type Engine struct {
	surface    canvas.Surface
	saver      Saver
	stabilizer *gesture.Stabilizer
	classifier *gesture.Classifier
	gate       *gesture.Gate
	panel      *panel.Panel
	machine    *Machine
	logger     *slog.Logger

	enabled bool
	status  Status
}

// New creates an Engine drawing onto surface. A nil saver exports into the
// default output directory.
func New(surface canvas.Surface, saver Saver, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.History <= 0 {
		cfg.History = def.History
	}
	if cfg.MenuCooldown <= 0 {
		cfg.MenuCooldown = def.MenuCooldown
	}
	if cfg.ActionCooldown <= 0 {
		cfg.ActionCooldown = def.ActionCooldown
	}
	if saver == nil {
		saver = ExportSaver{Dir: canvas.DefaultOutputDir, Format: canvas.DefaultFormat}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gate := gesture.NewGate(cfg.ActionCooldown)
	gate.SetCooldown(ActionMenu, cfg.MenuCooldown)

	e := &Engine{
		surface:    surface,
		saver:      saver,
		stabilizer: gesture.NewStabilizer(cfg.Smoothing, cfg.History),
		classifier: gesture.NewClassifier(cfg.PinchThreshold),
		gate:       gate,
		panel:      panel.New(cfg.Panel),
		machine:    NewMachine(surface, gate, cfg.EraserThickness),
		logger:     logger.With("component", "engine"),
		enabled:    true,
	}
	e.status = e.buildStatus(Frame{})
	return e
}

// Panel returns the control panel. Callers must not mutate it outside the frame loop.
func (e *Engine) Panel() *panel.Panel { return e.panel }

// Surface returns the drawing surface.
func (e *Engine) Surface() canvas.Surface { return e.surface }

// Mode returns the active drawing mode.
func (e *Engine) Mode() Mode { return e.machine.Mode() }

// Pending returns the pending shape anchor, if any.
func (e *Engine) Pending() (Pending, bool) { return e.machine.Pending() }

// Enabled reports whether hand input is being processed.
func (e *Engine) Enabled() bool { return e.enabled }

// SetEnabled pauses or resumes hand processing. Paused frames still render.
func (e *Engine) SetEnabled(enabled bool) {
	if e.enabled == enabled {
		return
	}
	e.enabled = enabled
	e.machine.Abort()
	e.stabilizer.Reset()
	e.logger.Info("engine toggled", "enabled", enabled)
}

// Status returns the status computed by the last Step or Apply.
func (e *Engine) Status() Status { return e.status }

// Restore applies persisted control state and mode.
func (e *Engine) Restore(state panel.State, mode Mode) {
	e.panel.SetState(state)
	e.machine.SetMode(mode)
	e.status = e.buildStatus(Frame{})
}

// Step processes one frame of detected hands. The first hand with usable
// landmarks drives the frame; malformed hands are skipped. No error is
// returned: failures are logged and surfaced as an overlay message.
func (e *Engine) Step(now time.Time, hands []detector.Hand) Frame {
	var f Frame
	if !e.enabled {
		e.machine.Lift()
		return e.finish(f)
	}

	snap, ok := e.primary(hands)
	if !ok {
		e.machine.Lift()
		return e.finish(f)
	}

	f.HandDetected = true
	f.Snapshot = snap
	f.Point = e.stabilizer.Push(snap.IndexTip)

	if snap.Fist && e.gate.Allow(ActionMenu, now) {
		visible := e.panel.ToggleMenu()
		e.logger.Debug("menu toggled", "visible", visible)
	}

	consumed := false
	if e.panel.State().MenuVisible && snap.DrawFingersUp {
		f.Hit = e.panel.HitTest(f.Point)
		if f.Hit.Control != panel.ControlNone {
			consumed = true
			f.Message = e.activate(f.Hit, now)
		}
	}

	switch snap.Intent() {
	case gesture.IntentDraw:
		if consumed {
			e.machine.Lift()
			break
		}
		swatch := e.panel.Swatch()
		preview, err := e.machine.Draw(Stroke{
			Point:     f.Point,
			Pinching:  snap.Pinching,
			Color:     swatch.Color,
			Eraser:    swatch.Eraser,
			Thickness: e.panel.State().Thickness,
		}, now)
		if err != nil {
			e.logger.Warn("canvas mutation failed", "error", err)
		}
		f.Preview = preview
	case gesture.IntentMove:
		e.machine.Abort()
		radius := CursorRadius
		if snap.Pinching {
			radius = CursorPrecisionRadius
		}
		f.Cursor = &Cursor{At: f.Point, Radius: radius, Color: e.panel.Color()}
	default:
		e.machine.Abort()
	}

	return e.finish(f)
}

// Apply executes a host command through the same debounce identifiers as the
// panel. It returns the overlay message, if any.
func (e *Engine) Apply(cmd Command, now time.Time) string {
	var msg string
	switch cmd.Kind {
	case CmdClear:
		msg = e.activate(panel.Hit{Control: panel.ControlClear}, now)
	case CmdSave:
		msg = e.activate(panel.Hit{Control: panel.ControlSave}, now)
	case CmdToggleGrid:
		msg = e.activate(panel.Hit{Control: panel.ControlGrid}, now)
	case CmdNextMode:
		msg = e.activate(panel.Hit{Control: panel.ControlMode}, now)
	case CmdSelectColor:
		msg = e.activate(panel.Hit{Control: panel.ControlSwatch, Swatch: cmd.Value}, now)
	case CmdSetThickness:
		msg = e.activate(panel.Hit{Control: panel.ControlSlider, Thickness: cmd.Value}, now)
	case CmdToggleMenu:
		if e.gate.Allow(ActionMenu, now) {
			e.panel.ToggleMenu()
		}
	case CmdSetEnabled:
		e.SetEnabled(cmd.Value != 0)
	default:
		e.logger.Warn("unknown command", "command", cmd.Kind)
	}
	e.status = e.buildStatus(Frame{})
	return msg
}

// activate applies a panel hit. Discrete controls are debounced per action;
// the slider is continuous and applies every frame.
func (e *Engine) activate(hit panel.Hit, now time.Time) string {
	if hit.Control == panel.ControlSlider {
		e.panel.SetThickness(hit.Thickness)
		return ""
	}
	if !e.gate.Allow(gesture.Action(hit.Control.String()), now) {
		return ""
	}

	switch hit.Control {
	case panel.ControlSwatch:
		if e.panel.SelectColor(hit.Swatch) {
			e.logger.Debug("colour selected", "color", e.panel.Swatch().Name)
		}
	case panel.ControlClear:
		if err := e.machine.Clear(); err != nil {
			e.logger.Warn("clear failed", "error", err)
			return fmt.Sprintf("Clear failed: %v", err)
		}
		e.logger.Info("canvas cleared")
	case panel.ControlGrid:
		enabled := e.panel.ToggleGrid()
		e.logger.Debug("grid toggled", "enabled", enabled)
	case panel.ControlMode:
		mode := e.machine.NextMode()
		e.logger.Info("mode changed", "mode", mode.String())
	case panel.ControlSave:
		return e.save(now)
	}
	return ""
}

func (e *Engine) save(now time.Time) string {
	path, err := e.saver.Save(e.surface, e.machine.Mode(), now)
	if err != nil {
		e.logger.Warn("save failed", "error", err)
		return fmt.Sprintf("Save failed: %v", err)
	}
	e.logger.Info("drawing saved", "path", path)
	return fmt.Sprintf("Saved as %s", path)
}

// primary returns the snapshot of the first hand with usable landmarks.
func (e *Engine) primary(hands []detector.Hand) (gesture.Snapshot, bool) {
	for i := range hands {
		snap, err := e.classifier.Classify(&hands[i])
		if errors.Is(err, detector.ErrMalformedHand) {
			e.logger.Debug("skipping malformed hand", "index", i, "points", len(hands[i].Points))
			continue
		}
		if err != nil {
			continue
		}
		return snap, true
	}
	return gesture.Snapshot{}, false
}

func (e *Engine) finish(f Frame) Frame {
	f.Status = e.buildStatus(f)
	e.status = f.Status
	return f
}

func (e *Engine) buildStatus(f Frame) Status {
	state := e.panel.State()
	_, pending := e.machine.Pending()
	intent := gesture.IntentNone
	if f.HandDetected {
		intent = f.Snapshot.Intent()
	}
	return Status{
		Mode:         e.machine.Mode().String(),
		Color:        e.panel.Swatch().Name,
		ColorIndex:   state.ColorIndex,
		Thickness:    state.Thickness,
		GridEnabled:  state.GridEnabled,
		MenuVisible:  state.MenuVisible,
		Enabled:      e.enabled,
		Pending:      pending,
		HandDetected: f.HandDetected,
		Intent:       intent.String(),
		Cursor:       f.Point,
	}
}
