package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("REPORTCARD_TIMEZONE")
	os.Unsetenv("REPORTCARD_FETCH_TIMEOUT")
	os.Unsetenv("REPORTCARD_FETCH_CONCURRENCY")
	os.Unsetenv("REPORTCARD_PREVIEW_SCALE")
	os.Unsetenv("REPORTCARD_ALLOWED_IMAGE_HOSTS")

	cfg := Load()

	if cfg.Gallery.Timezone != "Europe/Prague" {
		t.Errorf("expected default timezone Europe/Prague, got '%s'", cfg.Gallery.Timezone)
	}
	if cfg.Export.FetchTimeout != 30 {
		t.Errorf("expected default fetch timeout 30, got %d", cfg.Export.FetchTimeout)
	}
	if cfg.Export.Concurrency != 6 {
		t.Errorf("expected default concurrency 6, got %d", cfg.Export.Concurrency)
	}
	if cfg.Export.PreviewScale != 0.5 {
		t.Errorf("expected default preview scale 0.5, got %f", cfg.Export.PreviewScale)
	}
	if cfg.Export.AllowedImageHosts != nil {
		t.Errorf("expected no allowed hosts by default, got %v", cfg.Export.AllowedImageHosts)
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	os.Setenv("REPORTCARD_ALLOWED_IMAGE_HOSTS", "cdn.example.com, images.example.org ,")
	defer os.Unsetenv("REPORTCARD_ALLOWED_IMAGE_HOSTS")

	cfg := Load()

	if len(cfg.Export.AllowedImageHosts) != 2 {
		t.Fatalf("expected 2 allowed hosts, got %v", cfg.Export.AllowedImageHosts)
	}
	if cfg.Export.AllowedImageHosts[0] != "cdn.example.com" {
		t.Errorf("expected first host cdn.example.com, got '%s'", cfg.Export.AllowedImageHosts[0])
	}
	if cfg.Export.AllowedImageHosts[1] != "images.example.org" {
		t.Errorf("expected second host images.example.org, got '%s'", cfg.Export.AllowedImageHosts[1])
	}
}

func TestLoad_EmbeddedCatalog(t *testing.T) {
	cfg := Load()

	for _, kind := range []string{
		"weekly-single", "weekly-double", "monthly",
		"four-image", "yearly", "timeline", "comparison",
	} {
		spec, ok := cfg.Canvas(kind)
		if !ok {
			t.Errorf("expected catalog entry for %s", kind)
			continue
		}
		if spec.Width != 1080 {
			t.Errorf("%s: expected width 1080, got %d", kind, spec.Width)
		}
	}
}

func TestCanvasSpec_Height(t *testing.T) {
	tests := []struct {
		name     string
		spec     CanvasSpec
		aspect   string
		rows     int
		expected int
	}{
		{
			name:     "square preset",
			spec:     CanvasSpec{SquareHeight: 1080, PortraitHeight: 1350},
			aspect:   "square",
			expected: 1080,
		},
		{
			name:     "4:5 preset",
			spec:     CanvasSpec{SquareHeight: 1080, PortraitHeight: 1350},
			aspect:   "4:5",
			expected: 1350,
		},
		{
			name:     "fixed height ignores aspect",
			spec:     CanvasSpec{FixedHeight: 1760, SquareHeight: 1080},
			aspect:   "4:5",
			expected: 1760,
		},
		{
			name:     "row derived five rows",
			spec:     CanvasSpec{HeaderHeight: 236, RowHeight: 150, FooterHeight: 144},
			rows:     5,
			expected: 236 + 5*150 + 144,
		},
		{
			name:     "row derived clamps to one row",
			spec:     CanvasSpec{HeaderHeight: 236, RowHeight: 150, FooterHeight: 144},
			rows:     0,
			expected: 236 + 150 + 144,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Height(tt.aspect, tt.rows)
			if got != tt.expected {
				t.Errorf("Height(%q, %d) = %d, want %d", tt.aspect, tt.rows, got, tt.expected)
			}
		})
	}
}
