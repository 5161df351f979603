package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/gallery"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	g, err := gallery.New("http://gallery.example.com", "token")
	if err != nil {
		t.Fatalf("could not create gallery client: %v", err)
	}

	cfg := config.Load()
	cfg.Gallery.Timezone = "UTC"

	s, err := NewServer(cfg, g, "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("could not create server: %v", err)
	}
	return s
}

func TestServer_HealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/templates"},
		{http.MethodGet, "/api/v1/sessions/unknown"},
		{http.MethodPost, "/api/v1/sessions/unknown/autofill"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code == http.StatusNotFound && tt.path == "/api/v1/templates" {
			t.Errorf("%s %s not routed", tt.method, tt.path)
		}
		// Session routes respond 404 with a JSON body when the id is unknown.
		if tt.path != "/api/v1/templates" && rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404 for unknown session, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestServer_InvalidTimezoneRejected(t *testing.T) {
	g, err := gallery.New("http://gallery.example.com", "token")
	if err != nil {
		t.Fatalf("could not create gallery client: %v", err)
	}
	cfg := config.Load()
	cfg.Gallery.Timezone = "Neverland/Nowhere"

	if _, err := NewServer(cfg, g, "127.0.0.1", 0); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
