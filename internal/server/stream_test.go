package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/ayusman/handfusion/internal/fusion"
)

func TestStreamHandler_UnknownView(t *testing.T) {
	s := New(Config{Hub: NewHub()})

	req := httptest.NewRequest(http.MethodGet, "/api/stream/thumbnail", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestStreamHandler_ServesLatestFrame(t *testing.T) {
	hub := NewHub()
	hub.Publish(map[string][]byte{"left-skin": []byte("jpeg-bytes")}, fusion.Summary{Tick: 1})

	ts := httptest.NewServer(New(Config{Hub: hub, StreamInterval: time.Millisecond}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream/left-skin", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	tp := textproto.NewReader(bufio.NewReader(resp.Body))
	boundary, err := tp.ReadLine()
	if err != nil {
		t.Fatalf("reading boundary: %v", err)
	}
	if boundary != "--frame" {
		t.Fatalf("boundary = %q, want --frame", boundary)
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("reading part header: %v", err)
	}
	if header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("part Content-Type = %q", header.Get("Content-Type"))
	}
	n, err := strconv.Atoi(header.Get("Content-Length"))
	if err != nil {
		t.Fatalf("bad Content-Length: %v", err)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(tp.R, body); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if string(body) != "jpeg-bytes" {
		t.Errorf("frame = %q, want jpeg-bytes", body)
	}

	if got := hub.WatchedViews(); len(got) != 1 || got[0] != "left-skin" {
		t.Errorf("WatchedViews() = %v while streaming", got)
	}
}
