package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/handfusion/internal/store"
)

func TestAPI_ProfileWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	ts := httptest.NewServer(New(Config{Store: s}))
	defer ts.Close()

	client := ts.Client()

	// 1. Create a profile
	createBody := `{"name": "desk", "min_depth": 600, "max_depth": 1800}`
	resp, err := client.Post(ts.URL+"/api/profiles", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/profiles error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		MinDepth int    `json:"min_depth"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Name != "desk" || created.MinDepth != 600 {
		t.Errorf("created = %+v", created)
	}

	// 2. List profiles
	resp, err = client.Get(ts.URL + "/api/profiles")
	if err != nil {
		t.Fatalf("GET /api/profiles error = %v", err)
	}
	var listed struct {
		Profiles []struct {
			ID string `json:"id"`
		} `json:"profiles"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Profiles) != 1 || listed.Profiles[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	// 3. Record a session against it
	if err := s.Sessions().Start(&store.Session{ID: "sess-1", ProfileID: created.ID}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// 4. Delete the profile
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/profiles/"+created.ID, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	// 5. The session survives without its profile
	resp, err = client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var sessions struct {
		Sessions []struct {
			ID        string `json:"id"`
			ProfileID string `json:"profile_id"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&sessions)
	resp.Body.Close()

	if len(sessions.Sessions) != 1 || sessions.Sessions[0].ProfileID != "" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	ts := httptest.NewServer(New(Config{}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
