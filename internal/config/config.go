package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type Config struct {
	Gallery   GalleryConfig
	Export    ExportConfig
	Templates TemplatesConfig
}

type GalleryConfig struct {
	URL      string // base URL of the gallery API (e.g., https://gallery.example.com)
	Token    string // bearer token for the gallery API
	Timezone string // IANA timezone used for day bucketing (default Europe/Prague)
}

type ExportConfig struct {
	AllowedImageHosts []string // extra hosts assets may be fetched from; gallery host is always allowed
	FetchTimeout      int      // seconds to wait for all assets to resolve (default 30)
	Concurrency       int      // parallel asset fetches during resolution (default 6)
	PreviewScale      float64  // preview render scale relative to export resolution (default 0.5)
}

type TemplatesConfig struct {
	Templates map[string]CanvasSpec `yaml:"templates"`
}

// CanvasSpec describes the fixed output geometry of one template kind.
// Monthly cards derive their height from the computed row count; every
// other kind uses SquareHeight or PortraitHeight depending on the aspect
// preset, or FixedHeight when only one shape exists.
type CanvasSpec struct {
	Width          int     `yaml:"width"`
	SquareHeight   int     `yaml:"squareHeight"`
	PortraitHeight int     `yaml:"portraitHeight"`
	FixedHeight    int     `yaml:"fixedHeight"`
	HeaderHeight   int     `yaml:"headerHeight"`
	RowHeight      int     `yaml:"rowHeight"`
	FooterHeight   int     `yaml:"footerHeight"`
	Margin         int     `yaml:"margin"`
	CellGap        int     `yaml:"cellGap"`
	CornerRadius   float64 `yaml:"cornerRadius"`
}

// Height resolves the canvas height for the given aspect preset ("square"
// or "4:5") and calendar row count. Rows only matter for row-derived
// templates (HeaderHeight > 0).
func (c CanvasSpec) Height(aspect string, rows int) int {
	if c.HeaderHeight > 0 && c.RowHeight > 0 {
		if rows < 1 {
			rows = 1
		}
		return c.HeaderHeight + rows*c.RowHeight + c.FooterHeight
	}
	if c.FixedHeight > 0 {
		return c.FixedHeight
	}
	if aspect == "4:5" && c.PortraitHeight > 0 {
		return c.PortraitHeight
	}
	return c.SquareHeight
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a float in (0, 1].
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

// envList reads a comma-separated environment variable.
func envList(key string) []string {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() *Config {
	var templates TemplatesConfig
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded templates.yaml: " + err.Error())
	}

	tz := os.Getenv("REPORTCARD_TIMEZONE")
	if tz == "" {
		tz = "Europe/Prague"
	}

	return &Config{
		Gallery: GalleryConfig{
			URL:      os.Getenv("GALLERY_URL"),
			Token:    os.Getenv("GALLERY_TOKEN"),
			Timezone: tz,
		},
		Export: ExportConfig{
			AllowedImageHosts: envList("REPORTCARD_ALLOWED_IMAGE_HOSTS"),
			FetchTimeout:      envInt("REPORTCARD_FETCH_TIMEOUT", 30),
			Concurrency:       envInt("REPORTCARD_FETCH_CONCURRENCY", 6),
			PreviewScale:      envFloat("REPORTCARD_PREVIEW_SCALE", 0.5),
		},
		Templates: templates,
	}
}

// Canvas returns the canvas spec for a template kind name.
func (c *Config) Canvas(kind string) (CanvasSpec, bool) {
	spec, ok := c.Templates.Templates[kind]
	return spec, ok
}
