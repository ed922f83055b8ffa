package gesture

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/ayusman/airdraw/internal/detector"
)

func TestStabilizer_FirstSampleUnchanged(t *testing.T) {
	s := NewStabilizer(DefaultSmoothing, DefaultHistory)

	got := s.Push(detector.Point{X: 120, Y: 80})

	if got != (image.Point{X: 120, Y: 80}) {
		t.Errorf("first sample = %v, want (120,80)", got)
	}
}

func TestStabilizer_Convergence(t *testing.T) {
	s := NewStabilizer(DefaultSmoothing, DefaultHistory)

	// Start somewhere else so the history has to flush out.
	for i := 0; i < 3; i++ {
		s.Push(detector.Point{X: 0, Y: 0})
	}

	target := detector.Point{X: 300, Y: 200}
	var got image.Point
	for i := 0; i < DefaultHistory; i++ {
		got = s.Push(target)
	}

	if got != (image.Point{X: 300, Y: 200}) {
		t.Errorf("after %d identical samples got %v, want (300,200)", DefaultHistory, got)
	}
}

func TestStabilizer_BoundedHistory(t *testing.T) {
	s := NewStabilizer(DefaultSmoothing, 4)

	for i := 0; i < 10; i++ {
		s.Push(detector.Point{X: float64(i), Y: 0})
	}

	if s.Len() != 4 {
		t.Errorf("history length = %d, want 4", s.Len())
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("history length after reset = %d, want 0", s.Len())
	}
}

func TestStabilizer_Blend(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		want  image.Point
	}{
		// history after push = {0, 100}, mean 50
		{"half smoothing", 0.5, image.Point{X: 75, Y: 0}},
		{"no smoothing", 0, image.Point{X: 100, Y: 0}},
		{"full smoothing", 1, image.Point{X: 50, Y: 0}},
		{"clamped above one", 4, image.Point{X: 50, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStabilizer(tt.alpha, DefaultHistory)
			s.Push(detector.Point{X: 0, Y: 0})
			if got := s.Push(detector.Point{X: 100, Y: 0}); got != tt.want {
				t.Errorf("Push() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStabilizer_SetSmoothing(t *testing.T) {
	s := NewStabilizer(0.5, 0)
	s.SetSmoothing(-1)
	if s.Smoothing() != 0 {
		t.Errorf("Smoothing() = %f, want 0", s.Smoothing())
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultPinchThreshold)
	at := detector.Point{X: 640, Y: 360}

	tests := []struct {
		name     string
		hand     detector.Hand
		pinching bool
		fist     bool
		intent   Intent
	}{
		{"draw", detector.DrawHand(at), false, false, IntentDraw},
		{"pinch", detector.PinchHand(at), true, false, IntentDraw},
		{"point", detector.PointHand(at), false, false, IntentMove},
		{"fist", detector.FistHand(at), false, true, IntentNone},
		{"open palm", detector.OpenPalmHand(at), false, false, IntentDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := c.Classify(&tt.hand)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if snap.Pinching != tt.pinching {
				t.Errorf("Pinching = %v, want %v (distance %f)", snap.Pinching, tt.pinching, snap.TipDistance)
			}
			if snap.Fist != tt.fist {
				t.Errorf("Fist = %v, want %v", snap.Fist, tt.fist)
			}
			if got := snap.Intent(); got != tt.intent {
				t.Errorf("Intent() = %v, want %v", got, tt.intent)
			}
		})
	}
}

func TestClassifier_OtherPatternIsNone(t *testing.T) {
	c := NewClassifier(0)
	hand := detector.DrawHand(detector.Point{X: 100, Y: 100})
	hand.Fingers = detector.Fingers{true, false, true, true, false}

	snap, err := c.Classify(&hand)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if snap.Intent() != IntentNone {
		t.Errorf("Intent() = %v, want none", snap.Intent())
	}
	if snap.Fist {
		t.Error("three raised fingers is not a fist")
	}
}

func TestClassifier_Malformed(t *testing.T) {
	c := NewClassifier(DefaultPinchThreshold)

	tests := []struct {
		name string
		hand *detector.Hand
	}{
		{"nil hand", nil},
		{"no points", &detector.Hand{}},
		{"missing middle tip", &detector.Hand{Points: make([]detector.Point, detector.IndexTip+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Classify(tt.hand); !errors.Is(err, detector.ErrMalformedHand) {
				t.Errorf("expected ErrMalformedHand, got %v", err)
			}
		})
	}
}

func TestGate_Debounce(t *testing.T) {
	g := NewGate(DefaultCooldown)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	const action Action = "grid"

	if !g.Allow(action, start) {
		t.Fatal("first firing should be allowed")
	}
	if g.Allow(action, start.Add(100*time.Millisecond)) {
		t.Error("firing inside the cooldown should be rejected")
	}
	if !g.Allow(action, start.Add(DefaultCooldown)) {
		t.Error("firing once the cooldown elapsed should be allowed")
	}

	last, ok := g.LastFired(action)
	if !ok || !last.Equal(start.Add(DefaultCooldown)) {
		t.Errorf("LastFired() = %v, %v", last, ok)
	}
}

func TestGate_RejectedAttemptDoesNotExtend(t *testing.T) {
	g := NewGate(DefaultCooldown)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	g.Allow("save", start)
	g.Allow("save", start.Add(150*time.Millisecond))

	if !g.Allow("save", start.Add(210*time.Millisecond)) {
		t.Error("a rejected attempt must not push the window forward")
	}
}

func TestGate_IndependentActions(t *testing.T) {
	g := NewGate(DefaultCooldown)
	now := time.Now()

	g.Allow("clear", now)
	if !g.Allow("mode", now) {
		t.Error("different actions should not share a cooldown")
	}
}

func TestGate_Override(t *testing.T) {
	g := NewGate(DefaultCooldown)
	g.SetCooldown("menu", time.Second)
	start := time.Now()

	g.Allow("menu", start)
	if g.Ready("menu", start.Add(500*time.Millisecond)) {
		t.Error("menu should still be cooling down after 500ms")
	}
	if !g.Ready("menu", start.Add(time.Second)) {
		t.Error("menu should be ready after 1s")
	}
	if g.Cooldown("other") != DefaultCooldown {
		t.Errorf("Cooldown(other) = %v, want default", g.Cooldown("other"))
	}

	g.Reset()
	if !g.Ready("menu", start) {
		t.Error("Reset should clear recorded firings")
	}
}
