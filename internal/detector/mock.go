package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger column offsets from the index finger, in pixels.
const (
	middleSpread = -40.0
	middlePinch  = -20.0
	ringOffset   = -70.0
	pinkyOffset  = -100.0
)

// DrawHand returns a right hand with index and middle raised and apart,
// the index tip at the given point.
func DrawHand(at Point) Hand {
	return poseHand(at, Fingers{false, true, true, false, false}, false)
}

// PinchHand returns a right hand with index and middle raised and touching.
func PinchHand(at Point) Hand {
	return poseHand(at, Fingers{false, true, true, false, false}, true)
}

// PointHand returns a right hand with only the index finger raised.
func PointHand(at Point) Hand {
	return poseHand(at, Fingers{false, true, false, false, false}, false)
}

// FistHand returns a right hand with every finger folded.
func FistHand(at Point) Hand {
	return poseHand(at, Fingers{}, false)
}

// OpenPalmHand returns a right hand with every finger raised.
func OpenPalmHand(at Point) Hand {
	return poseHand(at, Fingers{true, true, true, true, true}, false)
}

// poseHand builds a synthetic right hand whose landmark geometry agrees with
// the requested finger vector. A raised index tip lands exactly on at.
func poseHand(at Point, up Fingers, pinch bool) Hand {
	points := make([]Point, NumLandmarks)

	wrist := Point{X: at.X, Y: at.Y + 200}
	points[Wrist] = wrist

	// Thumb extends outward (to the right) when raised, folds across the palm otherwise.
	points[ThumbCMC] = Point{X: wrist.X + 30, Y: wrist.Y - 20}
	points[ThumbMCP] = Point{X: wrist.X + 50, Y: wrist.Y - 40}
	if up[Thumb] {
		points[ThumbIP] = Point{X: wrist.X + 70, Y: wrist.Y - 60}
		points[ThumbTip] = Point{X: wrist.X + 90, Y: wrist.Y - 70}
	} else {
		points[ThumbIP] = Point{X: wrist.X + 50, Y: wrist.Y - 60}
		points[ThumbTip] = Point{X: wrist.X + 30, Y: wrist.Y - 70}
	}

	middle := middleSpread
	if pinch {
		middle = middlePinch
	}
	offsets := [5]float64{0, 0, middle, ringOffset, pinkyOffset}

	for finger := Index; finger <= Pinky; finger++ {
		mcp := tipIDs[finger] - 3
		base := Point{X: at.X + offsets[finger], Y: at.Y + 100}
		points[mcp] = base
		if up[finger] {
			points[mcp+1] = Point{X: base.X, Y: base.Y - 40}
			points[mcp+2] = Point{X: base.X, Y: base.Y - 70}
			points[mcp+3] = Point{X: base.X, Y: base.Y - 100}
		} else {
			points[mcp+1] = Point{X: base.X, Y: base.Y - 30}
			points[mcp+2] = Point{X: base.X, Y: base.Y - 10}
			points[mcp+3] = Point{X: base.X, Y: base.Y + 10}
		}
	}

	return Hand{
		Points:     points,
		Fingers:    up,
		Handedness: "Right",
		Score:      0.95,
	}
}
