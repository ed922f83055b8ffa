package engine

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/detector"
	"github.com/ayusman/airdraw/internal/gesture"
	"github.com/ayusman/airdraw/internal/panel"
)

var (
	black = color.RGBA{A: 255}
	epoch = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
)

// newTestEngine returns an engine with smoothing disabled so stabilized
// points equal the raw index tip.
func newTestEngine(t *testing.T, saver Saver) (*Engine, *canvas.Recorder) {
	t.Helper()
	rec := canvas.NewRecorder(canvas.DefaultWidth, canvas.DefaultHeight)
	cfg := DefaultConfig()
	cfg.Smoothing = 0
	if saver == nil {
		saver = SaverFunc(func(canvas.Surface, Mode, time.Time) (string, error) {
			return "saved_drawings/test.png", nil
		})
	}
	return New(rec, saver, cfg), rec
}

func hideMenu(e *Engine, mode Mode) {
	s := e.Panel().State()
	s.MenuVisible = false
	e.Restore(s, mode)
}

func pt(x, y float64) detector.Point { return detector.Point{X: x, Y: y} }

func hands(h ...detector.Hand) []detector.Hand { return h }

func TestEngine_FreehandScenario(t *testing.T) {
	e, rec := newTestEngine(t, nil)

	now := epoch
	for _, p := range []detector.Point{pt(10, 10), pt(20, 10), pt(30, 10)} {
		e.Step(now, hands(detector.DrawHand(p)))
		now = now.Add(33 * time.Millisecond)
	}

	segs := rec.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}

	want := [][2]image.Point{
		{image.Pt(10, 10), image.Pt(20, 10)},
		{image.Pt(20, 10), image.Pt(30, 10)},
	}
	for i, seg := range segs {
		if seg.From != want[i][0] || seg.To != want[i][1] {
			t.Errorf("segment %d = %v-%v, want %v-%v", i, seg.From, seg.To, want[i][0], want[i][1])
		}
		if seg.Color != black || seg.Thickness != panel.DefaultThickness {
			t.Errorf("segment %d colour/thickness = %v/%d", i, seg.Color, seg.Thickness)
		}
	}
}

func TestEngine_RectangleScenario(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeRectangle)

	e.Step(epoch, hands(detector.DrawHand(pt(100, 100))))
	if ops := rec.Ops(); len(ops) != 0 {
		t.Fatalf("anchor frame mutated canvas: %+v", ops)
	}
	if p, ok := e.Pending(); !ok || p.Anchor != image.Pt(100, 100) {
		t.Fatalf("Pending() = %+v, %v", p, ok)
	}

	e.Step(epoch.Add(50*time.Millisecond), hands(detector.PinchHand(pt(200, 150))))

	ops := rec.Ops()
	if len(ops) != 1 || ops[0].Kind != canvas.OpShape {
		t.Fatalf("expected one committed shape, got %+v", ops)
	}
	shape := ops[0].Shape
	if shape.Kind != canvas.ShapeRectangle {
		t.Errorf("shape kind = %v", shape.Kind)
	}
	if shape.Bounds() != image.Rect(100, 100, 200, 150) {
		t.Errorf("shape bounds = %v", shape.Bounds())
	}
	if _, ok := e.Pending(); ok {
		t.Error("pending shape should be cleared after commit")
	}
}

func TestEngine_ShapeCommitInvariant(t *testing.T) {
	modes := []Mode{ModeLine, ModeCircle, ModeRectangle}

	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			e, rec := newTestEngine(t, nil)
			hideMenu(e, mode)

			f := e.Step(epoch, hands(detector.DrawHand(pt(400, 400))))
			if len(rec.Ops()) != 0 || f.Preview != nil {
				t.Fatal("anchor frame must not mutate or preview")
			}

			f = e.Step(epoch.Add(30*time.Millisecond), hands(detector.DrawHand(pt(500, 450))))
			if len(rec.Ops()) != 0 {
				t.Fatal("preview frame must not mutate the canvas")
			}
			if f.Preview == nil || f.Preview.To != image.Pt(500, 450) {
				t.Fatalf("expected preview to current point, got %+v", f.Preview)
			}

			f = e.Step(epoch.Add(60*time.Millisecond), hands(detector.PinchHand(pt(520, 460))))
			if n := len(rec.Ops()); n != 1 {
				t.Fatalf("expected exactly one mutation on commit, got %d", n)
			}
			if f.Preview != nil {
				t.Error("commit frame should not carry a preview")
			}
			if _, ok := e.Pending(); ok {
				t.Error("pending shape must be empty after commit")
			}
		})
	}
}

func TestEngine_CircleRadius(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeCircle)

	e.Step(epoch, hands(detector.DrawHand(pt(600, 400))))
	e.Step(epoch.Add(time.Second), hands(detector.PinchHand(pt(630, 440))))

	ops := rec.Ops()
	if len(ops) != 1 {
		t.Fatalf("expected one op, got %d", len(ops))
	}
	if r := ops[0].Shape.Radius(); r != 50 {
		t.Errorf("radius = %d, want 50", r)
	}
	if ops[0].Shape.From != image.Pt(600, 400) {
		t.Errorf("centre = %v, want anchor", ops[0].Shape.From)
	}
}

func TestEngine_ModeCycling(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	modeButton := pt(1180, 215)

	now := epoch
	seen := []Mode{}
	for i := 0; i < 4; i++ {
		e.Step(now, hands(detector.DrawHand(modeButton)))
		if _, ok := e.Pending(); ok {
			t.Fatalf("pending shape present after mode change %d", i)
		}
		seen = append(seen, e.Mode())
		now = now.Add(300 * time.Millisecond)
	}

	want := []Mode{ModeLine, ModeCircle, ModeRectangle, ModeFreehand}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("activation %d: mode = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestEngine_ModeChangeClearsPending(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Restore(e.Panel().State(), ModeLine)

	e.Step(epoch, hands(detector.DrawHand(pt(600, 500))))
	if _, ok := e.Pending(); !ok {
		t.Fatal("expected an anchor")
	}

	e.Apply(Command{Kind: CmdNextMode}, epoch.Add(10*time.Millisecond))

	if e.Mode() != ModeCircle {
		t.Errorf("Mode() = %v, want Circle", e.Mode())
	}
	if _, ok := e.Pending(); ok {
		t.Error("mode change must clear the pending shape")
	}
}

func TestEngine_Debounce(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	gridButton := hands(detector.DrawHand(pt(1180, 115)))

	e.Step(epoch, gridButton)
	if e.Panel().State().GridEnabled {
		t.Fatal("first press should turn the grid off")
	}

	e.Step(epoch.Add(100*time.Millisecond), gridButton)
	if e.Panel().State().GridEnabled {
		t.Error("press inside the cooldown must not toggle again")
	}

	e.Step(epoch.Add(250*time.Millisecond), gridButton)
	if !e.Panel().State().GridEnabled {
		t.Error("press after the cooldown should toggle again")
	}
}

func TestEngine_Eraser(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	e.Apply(Command{Kind: CmdSelectColor, Value: 5}, epoch)
	if !e.Panel().Swatch().Eraser {
		t.Fatal("swatch 5 should be the eraser")
	}

	e.Step(epoch, hands(detector.PinchHand(pt(600, 400))))
	e.Step(epoch.Add(30*time.Millisecond), hands(detector.PinchHand(pt(620, 400))))

	segs := rec.Segments()
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Color != canvas.Background {
		t.Errorf("eraser colour = %v, want background", segs[0].Color)
	}
	if segs[0].Thickness != panel.EraserThickness {
		t.Errorf("eraser thickness = %d, want %d (pinch must not halve it)", segs[0].Thickness, panel.EraserThickness)
	}
}

func TestEngine_PrecisionThickness(t *testing.T) {
	tests := []struct {
		thickness int
		want      int
	}{
		{5, 2},
		{10, 5},
		{2, 1},
		{1, 1},
	}

	for _, tt := range tests {
		e, rec := newTestEngine(t, nil)
		e.Apply(Command{Kind: CmdSetThickness, Value: tt.thickness}, epoch)

		e.Step(epoch, hands(detector.PinchHand(pt(600, 400))))
		e.Step(epoch.Add(30*time.Millisecond), hands(detector.PinchHand(pt(610, 410))))

		segs := rec.Segments()
		if len(segs) != 1 {
			t.Fatalf("thickness %d: expected 1 segment, got %d", tt.thickness, len(segs))
		}
		if segs[0].Thickness != tt.want {
			t.Errorf("thickness %d pinched = %d, want %d", tt.thickness, segs[0].Thickness, tt.want)
		}
	}
}

func TestEngine_FistTogglesMenuOncePerSecond(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	fist := hands(detector.FistHand(pt(640, 400)))

	toggles := 0
	visible := e.Panel().State().MenuVisible
	for ms := 0; ms <= 1500; ms += 100 {
		e.Step(epoch.Add(time.Duration(ms)*time.Millisecond), fist)
		if v := e.Panel().State().MenuVisible; v != visible {
			toggles++
			visible = v
		}
	}

	if toggles != 2 {
		t.Errorf("expected 2 toggles over 1.5s (at 0s and 1s), got %d", toggles)
	}
}

func TestEngine_ConsumedPoint(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	e.Apply(Command{Kind: CmdSetThickness, Value: 4}, epoch)

	// Sweep across the clear button; the point is consumed every frame.
	now := epoch
	for x := 1140; x <= 1220; x += 20 {
		e.Step(now, hands(detector.DrawHand(pt(float64(x), 65))))
		now = now.Add(time.Second)
	}

	if segs := rec.Segments(); len(segs) != 0 {
		t.Errorf("no strokes should be drawn over controls, got %d", len(segs))
	}

	cleared := 0
	for _, op := range rec.Ops() {
		if op.Kind == canvas.OpClear {
			cleared++
		}
	}
	if cleared == 0 {
		t.Error("clear button should have fired")
	}
}

func TestEngine_SliderUpdatesThickness(t *testing.T) {
	e, rec := newTestEngine(t, nil)

	e.Step(epoch, hands(detector.DrawHand(pt(250-1, 110))))
	if got := e.Panel().State().Thickness; got != panel.MaxThickness {
		t.Errorf("thickness = %d, want %d", got, panel.MaxThickness)
	}
	e.Step(epoch.Add(10*time.Millisecond), hands(detector.DrawHand(pt(51, 110))))
	if got := e.Panel().State().Thickness; got != panel.MinThickness {
		t.Errorf("thickness = %d, want %d (slider is not debounced)", got, panel.MinThickness)
	}
	if len(rec.Segments()) != 0 {
		t.Error("slider drags must not draw")
	}
}

func TestEngine_MenuHiddenDrawsOverControls(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeFreehand)

	e.Step(epoch, hands(detector.DrawHand(pt(1150, 65))))
	e.Step(epoch.Add(30*time.Millisecond), hands(detector.DrawHand(pt(1170, 65))))

	if len(rec.Segments()) != 1 {
		t.Errorf("expected drawing when menu hidden, got %d segments", len(rec.Segments()))
	}
	for _, op := range rec.Ops() {
		if op.Kind == canvas.OpClear {
			t.Error("hidden controls must not fire")
		}
	}
}

func TestEngine_MultiHand(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	malformed := detector.Hand{Points: make([]detector.Point, 3)}

	f := e.Step(epoch, hands(malformed, detector.PointHand(pt(700, 500)), detector.DrawHand(pt(100, 600))))

	if !f.HandDetected {
		t.Fatal("expected a usable hand")
	}
	if f.Point != image.Pt(700, 500) {
		t.Errorf("point = %v, want first well-formed hand at (700,500)", f.Point)
	}
	if f.Cursor == nil {
		t.Error("first well-formed hand is move-only; expected a cursor")
	}

	f = e.Step(epoch.Add(time.Second), hands(malformed, malformed))
	if f.HandDetected {
		t.Error("only malformed hands should read as input-absent")
	}
}

func TestEngine_TruncatedHandWithTipsDrivesFrame(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	short := detector.PointHand(pt(640, 400))
	short.Points = short.Points[:detector.MiddleTip+1]

	f := e.Step(epoch, hands(short))
	if !f.HandDetected || f.Point != image.Pt(640, 400) {
		t.Errorf("frame = %+v, want hand at (640,400)", f)
	}
}

func TestEngine_HitTestUsesStabilizedPoint(t *testing.T) {
	tests := []struct {
		name     string
		prime    detector.Point
		raw      detector.Point
		wantMode Mode
	}{
		// Mean of 5x900 and 1180 pulls x to 1063, left of the Mode button.
		{"raw inside stabilized outside", pt(900, 215), pt(1180, 215), ModeFreehand},
		// Mean of 5x1180 and 1240 pulls x to 1215, inside the Mode button.
		{"raw outside stabilized inside", pt(1180, 215), pt(1240, 215), ModeLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := canvas.NewRecorder(canvas.DefaultWidth, canvas.DefaultHeight)
			e := New(rec, nil, DefaultConfig())

			now := epoch
			for i := 0; i < 5; i++ {
				e.Step(now, hands(detector.PointHand(tt.prime)))
				now = now.Add(33 * time.Millisecond)
			}

			rawHit := e.Panel().HitTest(image.Pt(int(tt.raw.X), int(tt.raw.Y))).Control
			f := e.Step(now, hands(detector.DrawHand(tt.raw)))

			if e.Mode() != tt.wantMode {
				t.Errorf("mode = %v, want %v (raw hit %v, stabilized %v)", e.Mode(), tt.wantMode, rawHit, f.Point)
			}
			if got := f.Hit.Control == panel.ControlMode; got != (tt.wantMode != ModeFreehand) {
				t.Errorf("hit = %v at stabilized %v", f.Hit.Control, f.Point)
			}
		})
	}
}

func TestNew_ZeroConfig(t *testing.T) {
	e := New(canvas.NewRecorder(10, 10), nil, Config{})

	if got := e.stabilizer.Smoothing(); got != 0 {
		t.Errorf("smoothing = %v, want 0", got)
	}
	if got := e.classifier.PinchThreshold(); got != gesture.DefaultPinchThreshold {
		t.Errorf("pinch threshold = %v, want %v", got, gesture.DefaultPinchThreshold)
	}
	if got := e.gate.Cooldown(ActionMenu); got != DefaultMenuCooldown {
		t.Errorf("menu cooldown = %v, want %v", got, DefaultMenuCooldown)
	}
}

func TestEngine_NoHandsKeepsPending(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeLine)

	e.Step(epoch, hands(detector.DrawHand(pt(300, 300))))
	f := e.Step(epoch.Add(30*time.Millisecond), nil)

	if f.HandDetected {
		t.Error("no hands should be reported")
	}
	if _, ok := e.Pending(); !ok {
		t.Error("input-absent frames must not drop the pending anchor")
	}
	if len(rec.Ops()) != 0 {
		t.Error("input-absent frames must not mutate the canvas")
	}
}

func TestEngine_MoveOnlyAbortsShape(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeRectangle)

	e.Step(epoch, hands(detector.DrawHand(pt(300, 300))))
	f := e.Step(epoch.Add(30*time.Millisecond), hands(detector.PointHand(pt(400, 350))))

	if _, ok := e.Pending(); ok {
		t.Error("move-only must clear the pending shape")
	}
	if f.Cursor == nil || f.Cursor.Radius != CursorRadius || f.Cursor.At != image.Pt(400, 350) {
		t.Errorf("unexpected cursor %+v", f.Cursor)
	}
	if len(rec.Ops()) != 0 {
		t.Error("aborting must not commit")
	}
}

func TestEngine_FreehandPenLiftsBetweenStrokes(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeFreehand)

	e.Step(epoch, hands(detector.DrawHand(pt(400, 400))))
	e.Step(epoch.Add(30*time.Millisecond), hands(detector.PointHand(pt(450, 400))))
	e.Step(epoch.Add(60*time.Millisecond), hands(detector.DrawHand(pt(500, 400))))

	if n := len(rec.Segments()); n != 0 {
		t.Errorf("lifting the pen must not connect separate strokes, got %d segments", n)
	}
}

func TestEngine_Save(t *testing.T) {
	t.Run("success message", func(t *testing.T) {
		var gotMode Mode = -1
		saver := SaverFunc(func(_ canvas.Surface, mode Mode, now time.Time) (string, error) {
			gotMode = mode
			return "out/" + canvas.FileName(now, "png"), nil
		})
		e, _ := newTestEngine(t, saver)

		f := e.Step(epoch, hands(detector.DrawHand(pt(1180, 165))))

		if !strings.HasPrefix(f.Message, "Saved as out/drawing_") {
			t.Errorf("Message = %q", f.Message)
		}
		if gotMode != ModeFreehand {
			t.Errorf("saver got mode %v", gotMode)
		}

		f = e.Step(epoch.Add(33*time.Millisecond), nil)
		if f.Message != "" {
			t.Error("save message must only last one frame")
		}
	})

	t.Run("failure is recoverable", func(t *testing.T) {
		saver := SaverFunc(func(canvas.Surface, Mode, time.Time) (string, error) {
			return "", errors.New("disk full")
		})
		e, rec := newTestEngine(t, saver)

		msg := e.Apply(Command{Kind: CmdSave}, epoch)
		if !strings.Contains(msg, "disk full") {
			t.Errorf("message = %q", msg)
		}

		e.Step(epoch.Add(time.Second), hands(detector.DrawHand(pt(600, 400))))
		e.Step(epoch.Add(time.Second+30*time.Millisecond), hands(detector.DrawHand(pt(610, 400))))
		if len(rec.Segments()) != 1 {
			t.Error("engine should keep drawing after a failed save")
		}
	})
}

func TestEngine_Disabled(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	e.Apply(Command{Kind: CmdSetEnabled, Value: 0}, epoch)

	e.Step(epoch, hands(detector.DrawHand(pt(600, 400))))
	f := e.Step(epoch.Add(30*time.Millisecond), hands(detector.DrawHand(pt(610, 400))))

	if len(rec.Ops()) != 0 {
		t.Error("disabled engine must not draw")
	}
	if f.Status.Enabled || f.HandDetected {
		t.Errorf("unexpected status %+v", f.Status)
	}

	e.Apply(Command{Kind: CmdSetEnabled, Value: 1}, epoch.Add(time.Second))
	if !e.Enabled() {
		t.Error("engine should be re-enabled")
	}
}

func TestEngine_ClearCommand(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	hideMenu(e, ModeLine)
	e.Step(epoch, hands(detector.DrawHand(pt(300, 300))))

	e.Apply(Command{Kind: CmdClear}, epoch.Add(time.Millisecond))

	ops := rec.Ops()
	if len(ops) != 1 || ops[0].Kind != canvas.OpClear {
		t.Errorf("expected a single clear, got %+v", ops)
	}
	if _, ok := e.Pending(); ok {
		t.Error("clear must drop the pending shape")
	}
}

func TestEngine_Status(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Restore(panel.State{ColorIndex: 2, Thickness: 7, GridEnabled: false, MenuVisible: true}, ModeCircle)

	f := e.Step(epoch, hands(detector.DrawHand(pt(600, 400))))
	s := f.Status

	if s.Mode != "Circle" || s.Color != "green" || s.Thickness != 7 || s.GridEnabled {
		t.Errorf("unexpected status %+v", s)
	}
	if !s.HandDetected || s.Intent != "draw" || !s.Pending {
		t.Errorf("unexpected hand fields %+v", s)
	}
	if e.Status() != s {
		t.Error("Status() should return the last frame's status")
	}
}

func TestMode(t *testing.T) {
	if ModeRectangle.Next() != ModeFreehand {
		t.Error("Rectangle should wrap to Freehand")
	}
	if _, ok := ModeFreehand.Shape(); ok {
		t.Error("Freehand has no shape")
	}
	if k, ok := ModeCircle.Shape(); !ok || k != canvas.ShapeCircle {
		t.Error("Circle should map to ShapeCircle")
	}
	if m, err := ParseMode("rectangle"); err != nil || m != ModeRectangle {
		t.Errorf("ParseMode() = %v, %v", m, err)
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if Mode(9).String() != "Unknown" {
		t.Error("out-of-range mode should be Unknown")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		want    Command
		wantErr bool
	}{
		{"clear", 0, Command{Kind: CmdClear}, false},
		{"SAVE", 0, Command{Kind: CmdSave}, false},
		{"grid", 0, Command{Kind: CmdToggleGrid}, false},
		{"menu", 0, Command{Kind: CmdToggleMenu}, false},
		{"mode", 0, Command{Kind: CmdNextMode}, false},
		{"color", 3, Command{Kind: CmdSelectColor, Value: 3}, false},
		{"thickness", 7, Command{Kind: CmdSetThickness, Value: 7}, false},
		{"disable", 0, Command{Kind: CmdSetEnabled, Value: 0}, false},
		{"enable", 0, Command{Kind: CmdSetEnabled, Value: 1}, false},
		{"explode", 0, Command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.name, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCommand() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
