package gesture

import (
	"github.com/ayusman/airdraw/internal/detector"
)

// DefaultPinchThreshold is the index/middle tip distance, in pixels, below which a pinch registers.
const DefaultPinchThreshold = 30.0

// Intent is the dominant interpretation of a hand used for dispatch.
type Intent int

const (
	// IntentNone means no drawing or cursor interaction this frame.
	IntentNone Intent = iota
	// IntentDraw means index and middle fingers are raised.
	IntentDraw
	// IntentMove means only the index finger is raised among index/middle.
	IntentMove
)

// String returns the intent name.
func (i Intent) String() string {
	switch i {
	case IntentDraw:
		return "draw"
	case IntentMove:
		return "move"
	default:
		return "none"
	}
}

// Snapshot is the per-frame gesture reading of one hand.
type Snapshot struct {
	Pinching      bool             `json:"pinching"`
	Fist          bool             `json:"fist"`
	DrawFingersUp bool             `json:"draw_fingers_up"`
	MoveOnly      bool             `json:"move_only"`
	IndexTip      detector.Point   `json:"index_tip"`
	MiddleTip     detector.Point   `json:"middle_tip"`
	TipDistance   float64          `json:"tip_distance"`
	Fingers       detector.Fingers `json:"fingers"`
}

// Intent returns the dominant interpretation of the snapshot.
func (s Snapshot) Intent() Intent {
	switch {
	case s.DrawFingersUp:
		return IntentDraw
	case s.MoveOnly:
		return IntentMove
	default:
		return IntentNone
	}
}

// Classifier derives gesture snapshots from a hand's landmarks and finger vector.
type Classifier struct {
	pinchThreshold float64
}

// NewClassifier creates a Classifier. A non-positive threshold uses DefaultPinchThreshold.
func NewClassifier(pinchThreshold float64) *Classifier {
	if pinchThreshold <= 0 {
		pinchThreshold = DefaultPinchThreshold
	}
	return &Classifier{pinchThreshold: pinchThreshold}
}

// PinchThreshold returns the configured pinch distance.
func (c *Classifier) PinchThreshold() float64 {
	return c.pinchThreshold
}

// Classify reads a snapshot from the hand. It returns detector.ErrMalformedHand
// when the hand lacks the index or middle fingertip landmarks.
func (c *Classifier) Classify(hand *detector.Hand) (Snapshot, error) {
	if !hand.Has(detector.IndexTip) || !hand.Has(detector.MiddleTip) {
		return Snapshot{}, detector.ErrMalformedHand
	}

	index := hand.Points[detector.IndexTip]
	middle := hand.Points[detector.MiddleTip]
	distance := index.Distance(middle)
	fingers := hand.Fingers

	return Snapshot{
		Pinching:      distance < c.pinchThreshold,
		Fist:          fingers.Count() == 0,
		DrawFingersUp: fingers[detector.Index] && fingers[detector.Middle],
		MoveOnly:      fingers[detector.Index] && !fingers[detector.Middle],
		IndexTip:      index,
		MiddleTip:     middle,
		TipDistance:   distance,
		Fingers:       fingers,
	}, nil
}
