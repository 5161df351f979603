package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/layout"
	"github.com/atelierlog/reportcard/internal/session"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.NRGBA{R: 0xcc, G: 0x33, B: 0x11, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode test png: %v", err)
	}
	return buf.Bytes()
}

// assetServer serves a png for every path, a 500 for paths containing
// "broken" and garbage bytes for paths containing "garbage".
func assetServer(t *testing.T) *httptest.Server {
	t.Helper()
	body := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "broken"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.Contains(r.URL.Path, "garbage"):
			w.Write([]byte("this is not an image"))
		default:
			w.Write(body)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func serverHost(t *testing.T, server *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("could not parse server URL: %v", err)
	}
	return u.Host
}

func testConfig() config.ExportConfig {
	return config.ExportConfig{FetchTimeout: 5, Concurrency: 3, PreviewScale: 0.5}
}

// slotSession opens a four-image style session with one artwork per slot,
// every slot assigned.
func slotSession(t *testing.T, baseURL string, ids ...string) *session.Session {
	t.Helper()
	artworks := make([]gallery.Artwork, len(ids))
	for i, id := range ids {
		artworks[i] = gallery.Artwork{
			ID:         id,
			ImageURL:   baseURL + "/" + id + ".png",
			UploadedAt: "2026-04-01T10:00:00Z",
		}
	}
	ref := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	s := session.New("four-image", session.FillByRecency, ref, calendar.Grid{}, len(ids), artworks)
	for i, id := range ids {
		if err := s.Assign(i, id); err != nil {
			t.Fatalf("could not assign cell %d: %v", i, err)
		}
	}
	return s
}

func slotViewModel(t *testing.T, s *session.Session) layout.ViewModel {
	t.Helper()
	spec := config.CanvasSpec{Width: 400, SquareHeight: 400, Margin: 40, CellGap: 10, CornerRadius: 8}
	vm, err := layout.Build(layout.KindFourImage, spec, s)
	if err != nil {
		t.Fatalf("could not build view model: %v", err)
	}
	return vm
}

func TestResolver_FetchesAllAssets(t *testing.T) {
	server := assetServer(t)
	r := NewResolver(testConfig(), serverHost(t, server))

	refs := []AssetRef{
		{ArtworkID: "a1", URL: server.URL + "/a1.png"},
		{ArtworkID: "a2", URL: server.URL + "/a2.png"},
		{ArtworkID: "a3", URL: server.URL + "/a3.png"},
	}
	bitmaps, err := r.Resolve(context.Background(), refs)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(bitmaps) != 3 {
		t.Fatalf("expected 3 bitmaps, got %d", len(bitmaps))
	}
	for _, ref := range refs {
		img, ok := bitmaps[ref.ArtworkID]
		if !ok || img.Bounds().Dx() != 20 {
			t.Errorf("bitmap for %s missing or wrong size", ref.ArtworkID)
		}
	}
}

func TestResolver_RejectsForeignHostWithoutFetching(t *testing.T) {
	server := assetServer(t)
	r := NewResolver(testConfig(), serverHost(t, server))

	_, err := r.Resolve(context.Background(), []AssetRef{
		{ArtworkID: "a1", URL: "http://elsewhere.example/a1.png"},
	})
	if !errors.Is(err, ErrCrossOrigin) {
		t.Fatalf("expected cross-origin error, got %v", err)
	}
	var assetErr *AssetError
	if !errors.As(err, &assetErr) || assetErr.Kind != AssetCrossOrigin {
		t.Errorf("expected AssetError with cross-origin kind, got %v", err)
	}
}

func TestResolver_AllowlistedHostPasses(t *testing.T) {
	server := assetServer(t)
	cfg := testConfig()
	cfg.AllowedImageHosts = []string{serverHost(t, server)}
	r := NewResolver(cfg, "gallery.example.com")

	bitmaps, err := r.Resolve(context.Background(), []AssetRef{
		{ArtworkID: "a1", URL: server.URL + "/a1.png"},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(bitmaps) != 1 {
		t.Errorf("expected 1 bitmap, got %d", len(bitmaps))
	}
}

func TestResolver_ClassifiesFailures(t *testing.T) {
	server := assetServer(t)
	r := NewResolver(testConfig(), serverHost(t, server))

	tests := []struct {
		name string
		path string
		kind AssetKind
	}{
		{"server error", "/broken.png", AssetNetwork},
		{"undecodable body", "/garbage.png", AssetDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), []AssetRef{
				{ArtworkID: "a1", URL: server.URL + tt.path},
			})
			var assetErr *AssetError
			if !errors.As(err, &assetErr) {
				t.Fatalf("expected AssetError, got %v", err)
			}
			if assetErr.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, assetErr.Kind)
			}
		})
	}
}

func TestResolver_DeadlineMapsToTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	r := NewResolver(testConfig(), serverHost(t, slow))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, []AssetRef{
		{ArtworkID: "a1", URL: slow.URL + "/a1.png"},
	})
	if !errors.Is(err, ErrExportTimeout) {
		t.Fatalf("expected export timeout, got %v", err)
	}
}

func TestResolver_ReportsProgress(t *testing.T) {
	server := assetServer(t)
	r := NewResolver(testConfig(), serverHost(t, server))

	var mu sync.Mutex
	var calls, lastTotal int
	r.OnProgress = func(done, total int) {
		mu.Lock()
		calls++
		lastTotal = total
		mu.Unlock()
	}

	refs := []AssetRef{
		{ArtworkID: "a1", URL: server.URL + "/a1.png"},
		{ArtworkID: "a2", URL: server.URL + "/a2.png"},
	}
	if _, err := r.Resolve(context.Background(), refs); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("expected 2 progress calls with total 2, got calls=%d total=%d", calls, lastTotal)
	}
}

func TestAssetsFor_DedupesArtworks(t *testing.T) {
	server := assetServer(t)
	s := slotSession(t, server.URL, "a1", "a2")
	if err := s.Assign(1, "a1"); err != nil {
		t.Fatalf("could not reassign cell: %v", err)
	}
	vm := slotViewModel(t, s)

	refs := AssetsFor(vm, s)
	if len(refs) != 1 {
		t.Fatalf("expected 1 deduplicated ref, got %d", len(refs))
	}
	if refs[0].ArtworkID != "a1" {
		t.Errorf("unexpected ref %+v", refs[0])
	}
}

func TestPipeline_ExportProducesPNG(t *testing.T) {
	server := assetServer(t)
	p, err := NewPipeline(testConfig(), serverHost(t, server))
	if err != nil {
		t.Fatalf("could not create pipeline: %v", err)
	}

	s := slotSession(t, server.URL, "a1", "a2", "a3", "a4")
	vm := slotViewModel(t, s)

	data, err := p.Export(context.Background(), vm, s)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export output is not a valid png: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 400 {
		t.Errorf("unexpected export dimensions %v", img.Bounds())
	}
}

func TestPipeline_ExportFailsAtomically(t *testing.T) {
	server := assetServer(t)
	p, err := NewPipeline(testConfig(), serverHost(t, server))
	if err != nil {
		t.Fatalf("could not create pipeline: %v", err)
	}

	// One of five assets fails; no bytes may come back.
	s := slotSession(t, server.URL, "a1", "a2", "broken", "a4", "a5")
	vm := slotViewModel(t, s)

	data, err := p.Export(context.Background(), vm, s)
	if err == nil {
		t.Fatal("expected export to fail when an asset is unavailable")
	}
	if data != nil {
		t.Errorf("failed export must not return bytes, got %d", len(data))
	}
	var assetErr *AssetError
	if !errors.As(err, &assetErr) || assetErr.ArtworkID != "broken" {
		t.Errorf("expected AssetError for the broken artwork, got %v", err)
	}
}

func TestPipeline_PreviewToleratesFailures(t *testing.T) {
	server := assetServer(t)
	p, err := NewPipeline(testConfig(), serverHost(t, server))
	if err != nil {
		t.Fatalf("could not create pipeline: %v", err)
	}

	s := slotSession(t, server.URL, "a1", "broken", "a3", "a4")
	vm := slotViewModel(t, s)

	data, err := p.Preview(context.Background(), vm, s)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("preview output is not a valid png: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("expected preview width 200 at scale 0.5, got %d", img.Bounds().Dx())
	}
}
