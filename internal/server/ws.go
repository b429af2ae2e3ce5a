package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// HandsHandler pushes the hand summary of every tick over WebSocket.
type HandsHandler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandsHandler creates a new HandsHandler fed by hub.
func NewHandsHandler(hub *Hub, logger *slog.Logger) *HandsHandler {
	return &HandsHandler{hub: hub, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *HandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	summaries, cancel := h.hub.Subscribe()
	defer cancel()

	// Reading detects the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case s := <-summaries:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(s); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
