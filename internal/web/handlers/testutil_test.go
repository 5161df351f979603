package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/export"
	"github.com/atelierlog/reportcard/internal/gallery"
)

// setupMockGallery serves the gallery API endpoints plus the image assets
// the artworks point at. Artworks land on three distinct April 2026 days.
func setupMockGallery(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/artworks", func(w http.ResponseWriter, r *http.Request) {
		artworks := []gallery.Artwork{
			{ID: "a1", ImageURL: server.URL + "/img/a1.png", UploadedAt: "2026-04-03T10:00:00Z", DurationMinutes: 45,
				Tags: []gallery.TagRef{{Name: "inktober"}, {ID: 7}}},
			{ID: "a2", ImageURL: server.URL + "/img/a2.png", UploadedAt: "2026-04-05T18:30:00Z", DurationMinutes: 30,
				Tags: []gallery.TagRef{{Name: "inktober"}}},
			{ID: "a3", ImageURL: server.URL + "/img/a3.png", UploadedAt: "2026-04-10T09:15:00Z"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"artworks": artworks})
	})

	mux.HandleFunc("/api/v1/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"tags": []gallery.Tag{{ID: 7, Name: "portrait"}}})
	})

	mux.HandleFunc("/api/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"displayName": "a display name that is far too long for the footer",
		})
	})

	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		img.Set(0, 0, color.NRGBA{R: 0x80, G: 0x20, B: 0x20, A: 0xff})
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, img)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type testEnv struct {
	handler *SessionsHandler
	store   *Store
}

// newTestEnv wires a sessions handler against a mock gallery.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	server := setupMockGallery(t)
	g, err := gallery.New(server.URL, "test-token")
	if err != nil {
		t.Fatalf("could not create gallery client: %v", err)
	}

	cfg := config.Load()
	cfg.Export.FetchTimeout = 5

	pipeline, err := export.NewPipeline(cfg.Export, g.Host())
	if err != nil {
		t.Fatalf("could not create pipeline: %v", err)
	}

	store := NewStore()
	return &testEnv{
		handler: NewSessionsHandler(cfg, g, store, pipeline, time.UTC),
		store:   store,
	}
}

// createSession drives the create handler and returns the parsed response.
func (env *testEnv) createSession(t *testing.T, template, reference string) sessionResponse {
	t.Helper()

	body, _ := json.Marshal(createRequest{Template: template, Reference: reference})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.Create(rec, req)

	assertStatusCode(t, rec, http.StatusCreated)
	var resp sessionResponse
	parseJSONResponse(t, rec, &resp)
	return resp
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// sessionRequest builds a request routed at one session.
func sessionRequest(method, path, id string, body []byte, extra map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	params := map[string]string{"id": id}
	for k, v := range extra {
		params[k] = v
	}
	return requestWithChiParams(req, params)
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}
