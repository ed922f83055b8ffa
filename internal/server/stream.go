package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/airdraw/internal/render"
)

// streamKeepAlive bounds how long a client waits before the current frame is resent.
const streamKeepAlive = 2 * time.Second

// StreamHandler serves the composited preview as MJPEG.
type StreamHandler struct {
	preview *render.Preview
}

// NewStreamHandler creates a new StreamHandler over the given preview.
func NewStreamHandler(preview *render.Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP streams every newly published frame to the client.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var sent uint64
	for {
		data, seq, ready := h.preview.Latest()
		if len(data) > 0 && seq != sent {
			if err := writeFrame(w, data); err != nil {
				return
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-ready:
		case <-time.After(streamKeepAlive):
			sent = 0
		}
	}
}

func writeFrame(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
