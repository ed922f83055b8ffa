package engine

import (
	"fmt"
	"strings"

	"github.com/ayusman/airdraw/internal/canvas"
)

// Mode is the active drawing tool.
type Mode int

const (
	ModeFreehand Mode = iota
	ModeLine
	ModeCircle
	ModeRectangle

	numModes = 4
)

var modeNames = [numModes]string{"Freehand", "Line", "Circle", "Rectangle"}

// String returns the display name of the mode.
func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return "Unknown"
	}
	return modeNames[m]
}

// Next returns the following mode, wrapping from Rectangle back to Freehand.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// Shape returns the shape kind drawn by a two-point mode.
// Freehand reports false.
func (m Mode) Shape() (canvas.ShapeKind, bool) {
	switch m {
	case ModeLine:
		return canvas.ShapeLine, true
	case ModeCircle:
		return canvas.ShapeCircle, true
	case ModeRectangle:
		return canvas.ShapeRectangle, true
	default:
		return 0, false
	}
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeFreehand, fmt.Errorf("unknown mode %q", s)
}
