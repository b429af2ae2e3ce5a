// Package api provides HTTP API handlers for handfusion tuning profiles and
// session history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handfusion/internal/config"
	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/store"
)

// ProfileHandler handles HTTP requests for profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles or /api/profiles/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

// profileRequest carries optional fields; zero values keep the current or
// default setting.
type profileRequest struct {
	Name          string  `json:"name"`
	MinDepth      int     `json:"min_depth"`
	MaxDepth      int     `json:"max_depth"`
	NearThreshold int     `json:"near_threshold"`
	SkinThreshold float64 `json:"skin_threshold"`
	MinSkinArea   int     `json:"min_skin_area"`
}

type profileResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	MinDepth      int     `json:"min_depth"`
	MaxDepth      int     `json:"max_depth"`
	NearThreshold int     `json:"near_threshold"`
	SkinThreshold float64 `json:"skin_threshold"`
	MinSkinArea   int     `json:"min_skin_area"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		Name:          p.Name,
		MinDepth:      p.MinDepth,
		MaxDepth:      p.MaxDepth,
		NearThreshold: p.NearThreshold,
		SkinThreshold: p.SkinThreshold,
		MinSkinArea:   p.MinSkinArea,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// apply copies the non-zero request fields onto p.
func (req profileRequest) apply(p *store.Profile) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.MinDepth != 0 {
		p.MinDepth = req.MinDepth
	}
	if req.MaxDepth != 0 {
		p.MaxDepth = req.MaxDepth
	}
	if req.NearThreshold != 0 {
		p.NearThreshold = req.NearThreshold
	}
	if req.SkinThreshold != 0 {
		p.SkinThreshold = req.SkinThreshold
	}
	if req.MinSkinArea != 0 {
		p.MinSkinArea = req.MinSkinArea
	}
}

// validate reports the first problem with p, or "" when it is usable.
func validate(p *store.Profile) string {
	switch {
	case p.Name == "":
		return "Name is required"
	case p.MinDepth < 0 || p.MinDepth >= p.MaxDepth || p.MaxDepth > depth.MaxDepthLimit:
		return "Invalid depth range"
	case p.NearThreshold < 1 || p.NearThreshold > 255:
		return "Near threshold must be between 1 and 255"
	case p.SkinThreshold < 0 || p.SkinThreshold > 1:
		return "Skin threshold must be between 0 and 1"
	case p.MinSkinArea < 0:
		return "Minimum skin area must not be negative"
	}
	return ""
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles. Omitted settings take the built-in defaults.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	def := config.Default()
	profile := &store.Profile{
		ID:            uuid.New().String(),
		MinDepth:      def.Sensor.MinDepth,
		MaxDepth:      def.Sensor.MaxDepth,
		NearThreshold: def.Thresholds.Near,
		SkinThreshold: float64(def.Thresholds.Skin),
		MinSkinArea:   def.Thresholds.MinSkinArea,
	}
	req.apply(profile)

	if msg := validate(profile); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.store.Profiles().GetByName(profile.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.apply(profile)

	if msg := validate(profile); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
