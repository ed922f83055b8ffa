package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/airdraw/internal/store"
)

// DrawingHandler serves saved-drawing records and their image files.
type DrawingHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDrawingHandler creates a DrawingHandler backed by s.
func NewDrawingHandler(s *store.Store, logger *slog.Logger) *DrawingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DrawingHandler{store: s, logger: logger.With("component", "api")}
}

// Register mounts the drawing routes on r.
func (h *DrawingHandler) Register(r chi.Router) {
	r.Route("/api/drawings", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/image", h.image)
		r.Delete("/{id}", h.delete)
	})
}

type drawingResponse struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Mode      string `json:"mode"`
	CreatedAt string `json:"created_at"`
}

type listDrawingsResponse struct {
	Drawings []drawingResponse `json:"drawings"`
}

func toDrawingResponse(d *store.Drawing) drawingResponse {
	return drawingResponse{
		ID:        d.ID,
		Path:      d.Path,
		Width:     d.Width,
		Height:    d.Height,
		Mode:      d.Mode,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/drawings, newest first.
func (h *DrawingHandler) list(w http.ResponseWriter, r *http.Request) {
	drawings, err := h.store.Drawings().List(0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drawings")
		return
	}

	response := listDrawingsResponse{
		Drawings: make([]drawingResponse, 0, len(drawings)),
	}
	for _, d := range drawings {
		response.Drawings = append(response.Drawings, toDrawingResponse(d))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/drawings/{id}.
func (h *DrawingHandler) get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDrawingResponse(d))
}

// image handles GET /api/drawings/{id}/image and serves the saved file.
func (h *DrawingHandler) image(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if _, err := os.Stat(d.Path); err != nil {
		writeError(w, http.StatusNotFound, "Drawing file not found")
		return
	}

	switch strings.ToLower(filepath.Ext(d.Path)) {
	case ".jpg", ".jpeg":
		w.Header().Set("Content-Type", "image/jpeg")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	http.ServeFile(w, r, d.Path)
}

// delete handles DELETE /api/drawings/{id}, removing the record and its file.
func (h *DrawingHandler) delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.store.Drawings().Delete(d.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete drawing")
		return
	}
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Warn("failed to remove drawing file", "path", d.Path, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DrawingHandler) lookup(w http.ResponseWriter, id string) (*store.Drawing, bool) {
	d, err := h.store.Drawings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Drawing not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get drawing")
		return nil, false
	}
	return d, true
}
