package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultStatusInterval is the status broadcast period (~15 Hz).
const DefaultStatusInterval = 66 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// StatusHandler broadcasts the engine status to WebSocket clients.
type StatusHandler struct {
	provider StatusProvider
	interval time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewStatusHandler creates a StatusHandler and starts its broadcast loop.
// A non-positive interval uses DefaultStatusInterval.
func NewStatusHandler(p StatusProvider, interval time.Duration, logger *slog.Logger) *StatusHandler {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &StatusHandler{
		provider: p,
		interval: interval,
		logger:   logger,
		clients:  make(map[*client]struct{}),
		done:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests. The current status is sent
// immediately after the upgrade.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	if msg, err := h.message(); err == nil {
		if err := c.send(msg); err != nil {
			return
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StatusHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop. Connected clients are left to disconnect.
func (h *StatusHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *StatusHandler) message() ([]byte, error) {
	return json.Marshal(map[string]any{
		"status":    h.provider.Status(),
		"timestamp": time.Now().UnixMilli(),
	})
}

// broadcast sends the status to all connected clients every interval.
func (h *StatusHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		targets := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			targets = append(targets, c)
		}
		h.mu.RUnlock()
		if len(targets) == 0 {
			continue
		}

		msg, err := h.message()
		if err != nil {
			h.logger.Warn("failed to encode status", "error", err)
			continue
		}
		for _, c := range targets {
			if err := c.send(msg); err != nil {
				c.conn.Close()
			}
		}
	}
}
