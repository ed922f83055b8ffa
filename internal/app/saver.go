package app

import (
	"log/slog"
	"time"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/store"
)

// recordingSaver exports the surface and records the file in the store.
// A failed insert is logged; the file on disk still counts as saved.
type recordingSaver struct {
	export engine.Saver
	store  *store.Store
	logger *slog.Logger
}

func (s *recordingSaver) Save(surface canvas.Surface, mode engine.Mode, now time.Time) (string, error) {
	path, err := s.export.Save(surface, mode, now)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return path, nil
	}

	size := surface.Size()
	d := &store.Drawing{
		Path:      path,
		Width:     size.X,
		Height:    size.Y,
		Mode:      mode.String(),
		CreatedAt: now,
	}
	if err := s.store.Drawings().Create(d); err != nil {
		s.logger.Warn("failed to record drawing", "path", path, "error", err)
	}
	return path, nil
}
