// Package testdata provides recorded landmark sessions for replay tests.
package testdata

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/ayusman/airdraw/internal/detector"
)

//go:embed sessions/*.jsonl
var sessionsFS embed.FS

// Session names.
const (
	// FreehandSave draws five segments, lifts the pen and presses Save.
	FreehandSave = "freehand_save"
	// Rectangle anchors, previews and commits one rectangle with a pinch.
	Rectangle = "rectangle"
	// MultiHand pairs a malformed hand with a drawing hand on every frame.
	MultiHand = "multi_hand"
)

// Session loads a recorded session by name.
func Session(name string) ([]detector.ReplayFrame, error) {
	data, err := sessionsFS.ReadFile("sessions/" + name + ".jsonl")
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", name, err)
	}

	frames, err := detector.ReadReplay(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", name, err)
	}
	return frames, nil
}

// Replay returns a non-looping detector over the named session.
func Replay(name string) (*detector.ReplayDetector, error) {
	frames, err := Session(name)
	if err != nil {
		return nil, err
	}
	return detector.NewReplayDetector(frames, false), nil
}

// Sessions lists the embedded session names.
func Sessions() ([]string, error) {
	entries, err := sessionsFS.ReadDir("sessions")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}
