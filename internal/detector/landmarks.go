// Package detector provides the hand-pose collaborator types and implementations
// that feed landmark frames into the drawing engine.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger positions within a Fingers vector.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// tipIDs maps each finger to its tip landmark.
var tipIDs = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point is a 2D landmark position in display pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Fingers is the up/down state of each finger, thumb to pinky.
type Fingers [5]bool

// Count returns the number of raised fingers.
func (f Fingers) Count() int {
	n := 0
	for _, up := range f {
		if up {
			n++
		}
	}
	return n
}

// Hand is a single tracked hand for one frame.
// Points are ordered by landmark index and already mirrored into display space.
type Hand struct {
	Points     []Point `json:"points"`
	Fingers    Fingers `json:"fingers"`
	Handedness string  `json:"handedness"` // "Left" or "Right"
	Score      float64 `json:"score"`
}

// Has reports whether the hand carries the landmark at index i.
func (h *Hand) Has(i int) bool {
	return h != nil && i >= 0 && i < len(h.Points)
}

// Complete reports whether all 21 landmarks are present.
func (h *Hand) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// FingersUp derives the finger vector from landmark geometry.
// A finger counts as raised when its tip is above its PIP joint; the thumb
// is raised when its tip lies outside the IP joint for the given handedness.
// Incomplete hands report all fingers down.
func FingersUp(points []Point, handedness string) Fingers {
	var f Fingers
	if len(points) < NumLandmarks {
		return f
	}

	if handedness == "Left" {
		f[Thumb] = points[ThumbTip].X < points[ThumbIP].X
	} else {
		f[Thumb] = points[ThumbTip].X > points[ThumbIP].X
	}

	for finger := Index; finger <= Pinky; finger++ {
		tip := tipIDs[finger]
		f[finger] = points[tip].Y < points[tip-2].Y
	}

	return f
}
