package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Export defaults.
const (
	DefaultOutputDir = "saved_drawings"
	DefaultFormat    = "png"
	timestampLayout  = "20060102-150405"
)

// FileName returns drawing_<YYYYMMDD-HHMMSS>.<format> for the given time.
func FileName(now time.Time, format string) string {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = DefaultFormat
	}
	return fmt.Sprintf("drawing_%s.%s", now.Format(timestampLayout), format)
}

// Export serializes the surface into dir, creating the directory if needed,
// and returns the written path.
func Export(s Surface, dir, format string, now time.Time) (string, error) {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(now, format))
	if err := s.Save(path); err != nil {
		return "", fmt.Errorf("failed to save drawing: %w", err)
	}
	return path, nil
}
