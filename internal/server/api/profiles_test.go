package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handfusion/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedProfile(t *testing.T, s *store.Store, id, name string) *store.Profile {
	t.Helper()

	p := &store.Profile{
		ID:            id,
		Name:          name,
		MinDepth:      800,
		MaxDepth:      2000,
		NearThreshold: 1,
		SkinThreshold: 0.4,
		MinSkinArea:   1000,
	}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProfileHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "p-2", "kitchen")
	seedProfile(t, s, "p-1", "desk")

	rec := do(t, NewProfileHandler(s), http.MethodGet, "/api/profiles", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listProfilesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(response.Profiles))
	}
	if response.Profiles[0].Name != "desk" {
		t.Errorf("expected profiles ordered by name, first = %s", response.Profiles[0].Name)
	}
}

func TestProfileHandler_ListEmpty(t *testing.T) {
	rec := do(t, NewProfileHandler(newTestStore(t)), http.MethodGet, "/api/profiles", nil)

	var response listProfilesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Profiles == nil || len(response.Profiles) != 0 {
		t.Errorf("expected empty profile list, got %v", response.Profiles)
	}
}

func TestProfileHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s)

	rec := do(t, handler, http.MethodPost, "/api/profiles", map[string]any{
		"name":      "close-range",
		"max_depth": 1500,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected generated ID")
	}
	if response.MaxDepth != 1500 {
		t.Errorf("MaxDepth = %d, want 1500", response.MaxDepth)
	}
	if response.MinDepth != 800 || response.NearThreshold != 1 {
		t.Errorf("expected defaults for omitted fields, got %+v", response)
	}
	if _, err := time.Parse(time.RFC3339, response.CreatedAt); err != nil {
		t.Errorf("CreatedAt %q is not RFC3339: %v", response.CreatedAt, err)
	}

	stored, err := s.Profiles().GetByID(response.ID)
	if err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if stored.Name != "close-range" {
		t.Errorf("stored name = %s", stored.Name)
	}
}

func TestProfileHandler_CreateInvalid(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "p-1", "taken")
	handler := NewProfileHandler(s)

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "missing name", body: map[string]any{"max_depth": 1500}, want: http.StatusBadRequest},
		{name: "inverted range", body: map[string]any{"name": "x", "min_depth": 2000, "max_depth": 900}, want: http.StatusBadRequest},
		{name: "near threshold too large", body: map[string]any{"name": "x", "near_threshold": 300}, want: http.StatusBadRequest},
		{name: "skin threshold above one", body: map[string]any{"name": "x", "skin_threshold": 1.5}, want: http.StatusBadRequest},
		{name: "duplicate name", body: map[string]any{"name": "taken"}, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/profiles", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestProfileHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "p-1", "desk")
	handler := NewProfileHandler(s)

	rec := do(t, handler, http.MethodGet, "/api/profiles/p-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Name != "desk" || response.MaxDepth != 2000 {
		t.Errorf("unexpected profile %+v", response)
	}

	rec = do(t, handler, http.MethodGet, "/api/profiles/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for missing profile, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "p-1", "desk")
	handler := NewProfileHandler(s)

	rec := do(t, handler, http.MethodPut, "/api/profiles/p-1", map[string]any{"near_threshold": 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	stored, err := s.Profiles().GetByID("p-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.NearThreshold != 40 {
		t.Errorf("NearThreshold = %d, want 40", stored.NearThreshold)
	}
	if stored.Name != "desk" {
		t.Errorf("Name changed to %s", stored.Name)
	}

	rec = do(t, handler, http.MethodPut, "/api/profiles/p-1", map[string]any{"min_depth": 5000})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for invalid update, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = do(t, handler, http.MethodPut, "/api/profiles/missing", map[string]any{"name": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for missing profile, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "p-1", "desk")
	handler := NewProfileHandler(s)

	rec := do(t, handler, http.MethodDelete, "/api/profiles/p-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = do(t, handler, http.MethodDelete, "/api/profiles/p-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_MethodNotAllowed(t *testing.T) {
	handler := NewProfileHandler(newTestStore(t))

	if rec := do(t, handler, http.MethodPatch, "/api/profiles", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("collection PATCH status = %d", rec.Code)
	}
	if rec := do(t, handler, http.MethodPost, "/api/profiles/p-1", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("item POST status = %d", rec.Code)
	}
}
