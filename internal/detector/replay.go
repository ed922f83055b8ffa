package detector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ReplayFrame is one recorded frame of a landmark session.
type ReplayFrame struct {
	Hands []Hand `json:"hands"`
}

// replayLine is the on-disk form of a frame. Fingers is a pointer so an
// absent vector can be told apart from a recorded all-down one.
type replayLine struct {
	Hands []struct {
		Points     []Point  `json:"points"`
		Fingers    *Fingers `json:"fingers"`
		Handedness string   `json:"handedness"`
		Score      float64  `json:"score"`
	} `json:"hands"`
}

// ReplayDetector plays back a recorded landmark session instead of running inference.
// The session is a JSON-lines file with one ReplayFrame per line.
// Once the session is exhausted Detect returns io.EOF unless looping is enabled.
type ReplayDetector struct {
	frames []ReplayFrame
	index  int
	loop   bool
	mu     sync.Mutex
}

// NewReplayDetector creates a ReplayDetector from already decoded frames.
func NewReplayDetector(frames []ReplayFrame, loop bool) *ReplayDetector {
	return &ReplayDetector{
		frames: frames,
		loop:   loop,
	}
}

// LoadReplay reads a JSON-lines session file.
func LoadReplay(path string, loop bool) (*ReplayDetector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	frames, err := ReadReplay(f)
	if err != nil {
		return nil, fmt.Errorf("read replay %s: %w", path, err)
	}

	return NewReplayDetector(frames, loop), nil
}

// ReadReplay decodes JSON-lines session data. Blank lines are skipped.
// Finger vectors are kept as recorded; a hand without one gets it derived
// from the landmark geometry.
func ReadReplay(r io.Reader) ([]ReplayFrame, error) {
	var frames []ReplayFrame

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var raw replayLine
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		frame := ReplayFrame{Hands: make([]Hand, 0, len(raw.Hands))}
		for _, rh := range raw.Hands {
			h := Hand{Points: rh.Points, Handedness: rh.Handedness, Score: rh.Score}
			switch {
			case rh.Fingers != nil:
				h.Fingers = *rh.Fingers
			case h.Complete():
				h.Fingers = FingersUp(h.Points, h.Handedness)
			}
			frame.Hands = append(frame.Hands, h)
		}

		frames = append(frames, frame)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Detect returns the hands of the next recorded frame. The frame argument is ignored.
func (d *ReplayDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return nil, io.EOF
		}
		d.index = 0
	}

	hands := d.frames[d.index].Hands
	d.index++

	return hands, nil
}

// Remaining returns how many frames are left before the session ends.
func (d *ReplayDetector) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames) - d.index
}

// Close is a no-op.
func (d *ReplayDetector) Close() error {
	return nil
}
