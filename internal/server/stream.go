package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handfusion/internal/fusion"
)

// DefaultStreamInterval is how often a stream checks for a new frame (~30 FPS).
const DefaultStreamInterval = 33 * time.Millisecond

// StreamHandler serves one pipeline view as MJPEG.
type StreamHandler struct {
	hub      *Hub
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading frames from hub.
func NewStreamHandler(hub *Hub, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &StreamHandler{hub: hub, interval: interval}
}

// ServeHTTP streams MJPEG frames of the view named in the URL to the client.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	if !fusion.ValidView(view) {
		http.Error(w, "Unknown view", http.StatusNotFound)
		return
	}

	release := h.hub.Watch(view)
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		buf, seq, ok := h.hub.Frame(view)
		if !ok || seq == last {
			continue
		}
		last = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
