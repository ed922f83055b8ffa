// Package gesture turns raw landmark streams into stable cursor positions,
// per-frame gesture snapshots, and debounced discrete actions.
package gesture

import (
	"image"
	"math"

	"github.com/ayusman/airdraw/internal/detector"
)

// Stabilizer defaults.
const (
	// DefaultSmoothing is the weight given to the history mean.
	DefaultSmoothing = 0.5
	// DefaultHistory is the number of raw samples kept for smoothing.
	DefaultHistory = 6
)

// Stabilizer smooths a noisy fingertip stream into a stable cursor point.
//
// Each pushed sample is appended to a bounded FIFO (oldest evicted first) and
// the output is raw*(1-alpha) + mean(history)*alpha. Feeding the same point
// repeatedly converges to exactly that point.
type Stabilizer struct {
	alpha    float64
	capacity int
	history  []detector.Point
}

// NewStabilizer creates a Stabilizer with the given smoothing weight and history size.
// Alpha is clamped to [0,1]; a non-positive capacity uses DefaultHistory.
func NewStabilizer(alpha float64, capacity int) *Stabilizer {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &Stabilizer{
		alpha:    clamp01(alpha),
		capacity: capacity,
		history:  make([]detector.Point, 0, capacity),
	}
}

// Push records a raw sample and returns the stabilized point.
func (s *Stabilizer) Push(raw detector.Point) image.Point {
	if len(s.history) >= s.capacity {
		// Shift left by 1, dropping the oldest sample
		copy(s.history, s.history[1:])
		s.history = s.history[:s.capacity-1]
	}
	s.history = append(s.history, raw)

	return toImagePoint(s.blend(raw))
}

// blend mixes the raw sample with the history mean.
func (s *Stabilizer) blend(raw detector.Point) detector.Point {
	if len(s.history) == 0 {
		return raw
	}

	var sumX, sumY float64
	for _, p := range s.history {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(s.history))

	return detector.Point{
		X: raw.X*(1-s.alpha) + (sumX/n)*s.alpha,
		Y: raw.Y*(1-s.alpha) + (sumY/n)*s.alpha,
	}
}

// SetSmoothing changes the smoothing weight. Values are clamped to [0,1].
func (s *Stabilizer) SetSmoothing(alpha float64) {
	s.alpha = clamp01(alpha)
}

// Smoothing returns the current smoothing weight.
func (s *Stabilizer) Smoothing() float64 {
	return s.alpha
}

// Len returns the number of samples currently held.
func (s *Stabilizer) Len() int {
	return len(s.history)
}

// Reset discards the sample history.
func (s *Stabilizer) Reset() {
	s.history = s.history[:0]
}

func toImagePoint(p detector.Point) image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
