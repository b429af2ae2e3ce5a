package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/handfusion/internal/store"
)

const defaultSessionLimit = 20

// SessionsHandler serves the history of tracking sessions.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

type sessionResponse struct {
	ID              string `json:"id"`
	ProfileID       string `json:"profile_id,omitempty"`
	SkinModelLoaded bool   `json:"skin_model_loaded"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at,omitempty"`
	Ticks           int64  `json:"ticks"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

// ServeHTTP handles GET /api/sessions?limit=N, newest first.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		item := sessionResponse{
			ID:              s.ID,
			ProfileID:       s.ProfileID,
			SkinModelLoaded: s.SkinModelLoaded,
			StartedAt:       s.StartedAt.Format(time.RFC3339),
			Ticks:           s.Ticks,
		}
		if s.EndedAt != nil {
			item.EndedAt = s.EndedAt.Format(time.RFC3339)
		}
		response.Sessions = append(response.Sessions, item)
	}

	writeJSON(w, http.StatusOK, response)
}
