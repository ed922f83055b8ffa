package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/airdraw/internal/engine"
)

// CommandSubmitter queues host commands for the frame loop.
type CommandSubmitter interface {
	Submit(cmd engine.Command) error
}

// CommandHandler accepts host commands over HTTP.
type CommandHandler struct {
	sink CommandSubmitter
}

// NewCommandHandler creates a CommandHandler that forwards to sink.
func NewCommandHandler(sink CommandSubmitter) *CommandHandler {
	return &CommandHandler{sink: sink}
}

// Register mounts the command route on r.
func (h *CommandHandler) Register(r chi.Router) {
	r.Post("/api/commands", h.submit)
}

type commandRequest struct {
	Command string `json:"command"`
	Value   int    `json:"value"`
}

type commandResponse struct {
	Command string `json:"command"`
	Value   int    `json:"value"`
	Queued  bool   `json:"queued"`
}

// submit handles POST /api/commands.
func (h *CommandHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "Command is required")
		return
	}

	cmd, err := engine.ParseCommand(req.Command, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sink.Submit(cmd); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{
		Command: cmd.Kind.String(),
		Value:   cmd.Value,
		Queued:  true,
	})
}
