// Package session holds the mutable designer state: one TemplateSession
// owns a grid of cells, the user's style and content choices, and the
// artwork records the gallery supplied when the session opened. Cells are
// discarded with the session; nothing here persists.
package session

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/gallery"
)

// CropRect is a source-space crop rectangle. A valid crop is fully
// contained within the source bitmap's natural dimensions; the renderer
// falls back to cover-fit when it is not.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// In reports whether the crop is fully contained in the source bounds.
func (c CropRect) In(bounds image.Rectangle) bool {
	if c.Width <= 0 || c.Height <= 0 || c.X < 0 || c.Y < 0 {
		return false
	}
	return c.X+c.Width <= bounds.Dx() && c.Y+c.Height <= bounds.Dy()
}

// Rect converts the crop to an image.Rectangle in source space.
func (c CropRect) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Cell is one grid position. ArtworkID is empty while unassigned; Manual
// marks a user assignment, which auto-fill never overwrites.
type Cell struct {
	Index     int       `json:"index"`
	ArtworkID string    `json:"artworkId,omitempty"`
	Manual    bool      `json:"manual,omitempty"`
	Crop      *CropRect `json:"crop,omitempty"`
}

// Assigned reports whether the cell holds an artwork.
func (c Cell) Assigned() bool {
	return c.ArtworkID != ""
}

// FillStrategy selects how auto-fill maps cells to artworks.
type FillStrategy int

const (
	// FillByDay maps each non-placeholder grid cell to its calendar day
	// (weekly and monthly templates).
	FillByDay FillStrategy = iota
	// FillByMonth maps each cell to one month of the reference year
	// (yearly template).
	FillByMonth
	// FillByRecency fills slots with the most recent artworks from
	// distinct days (four-image, timeline, comparison templates).
	FillByRecency
)

// StyleSettings are the user's pure-value style choices.
type StyleSettings struct {
	AccentColor      string  `json:"accentColor"`      // hex, e.g. "#E8590C"
	ShadowHue        float64 `json:"shadowHue"`        // 0-360
	ShadowSaturation float64 `json:"shadowSaturation"` // 0-1
	ShadowLightness  float64 `json:"shadowLightness"`  // 0-1
	ShadowOpacity    float64 `json:"shadowOpacity"`    // 0-1
	TextOpacity      float64 `json:"textOpacity"`      // 0-1
}

// DefaultStyle returns the style a fresh session starts with.
func DefaultStyle() StyleSettings {
	return StyleSettings{
		AccentColor:      "#E8590C",
		ShadowHue:        24,
		ShadowSaturation: 0.55,
		ShadowLightness:  0.35,
		ShadowOpacity:    0.4,
		TextOpacity:      1.0,
	}
}

// ContentOptions are the user's content and visibility choices.
type ContentOptions struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Username string   `json:"username"`
	Tags     []string `json:"tags"`
	Aspect   string   `json:"aspect"` // "square" or "4:5"

	ShowTimestamps      bool `json:"showTimestamps"`
	ShowDuration        bool `json:"showDuration"`
	ShowDayOffsets      bool `json:"showDayOffsets"`
	ShowImageOffsets    bool `json:"showImageOffsets"`
	ShowDurationOffsets bool `json:"showDurationOffsets"`
	ShowGradient        bool `json:"showGradient"`
}

// DefaultContent returns the content options a fresh session starts with.
func DefaultContent(username string) ContentOptions {
	return ContentOptions{
		Username:            username,
		Aspect:              "square",
		ShowTimestamps:      true,
		ShowDuration:        true,
		ShowDayOffsets:      true,
		ShowImageOffsets:    true,
		ShowDurationOffsets: true,
		ShowGradient:        true,
	}
}

// Session is the single owned designer state. It is not safe for
// concurrent use; the owning store serializes access.
type Session struct {
	ID        string
	Template  string
	Fill      FillStrategy
	Reference time.Time
	Grid      calendar.Grid
	Cells     []Cell
	Style     StyleSettings
	Content   ContentOptions

	artworks map[string]gallery.Artwork
	order    []string
}

// New opens a session for the given template over the given grid.
// cellCount is the template's slot count; day-mapped templates pass the
// grid's total cell count.
func New(template string, fill FillStrategy, ref time.Time, grid calendar.Grid, cellCount int, artworks []gallery.Artwork) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Template:  template,
		Fill:      fill,
		Reference: ref,
		Grid:      grid,
		Style:     DefaultStyle(),
		Content:   DefaultContent(""),
	}
	s.resetCells(cellCount)
	s.SetArtworks(artworks)
	return s
}

func (s *Session) resetCells(count int) {
	s.Cells = make([]Cell, count)
	for i := range s.Cells {
		s.Cells[i].Index = i
	}
}

// SetArtworks replaces the artwork records available to this session.
func (s *Session) SetArtworks(artworks []gallery.Artwork) {
	s.artworks = make(map[string]gallery.Artwork, len(artworks))
	s.order = make([]string, 0, len(artworks))
	for _, art := range artworks {
		if _, dup := s.artworks[art.ID]; dup {
			continue
		}
		s.artworks[art.ID] = art
		s.order = append(s.order, art.ID)
	}
}

// Artwork resolves an artwork id to its record.
func (s *Session) Artwork(id string) (gallery.Artwork, bool) {
	art, ok := s.artworks[id]
	return art, ok
}

// Artworks returns the session's artwork records in gallery order.
func (s *Session) Artworks() []gallery.Artwork {
	out := make([]gallery.Artwork, len(s.order))
	for i, id := range s.order {
		out[i] = s.artworks[id]
	}
	return out
}

// Assign puts an artwork into a cell as a manual assignment.
func (s *Session) Assign(index int, artworkID string) error {
	if index < 0 || index >= len(s.Cells) {
		return fmt.Errorf("cell index %d out of range (0-%d)", index, len(s.Cells)-1)
	}
	if _, ok := s.artworks[artworkID]; !ok {
		return fmt.Errorf("unknown artwork %q", artworkID)
	}
	if s.Grid.Mode != "" && len(s.Cells) == s.Grid.TotalCells() && s.Grid.IsPlaceholder(index) {
		return fmt.Errorf("cell %d is a calendar placeholder", index)
	}
	s.Cells[index].ArtworkID = artworkID
	s.Cells[index].Manual = true
	s.Cells[index].Crop = nil
	return nil
}

// Clear empties a cell, dropping any crop with it.
func (s *Session) Clear(index int) error {
	if index < 0 || index >= len(s.Cells) {
		return fmt.Errorf("cell index %d out of range (0-%d)", index, len(s.Cells)-1)
	}
	s.Cells[index] = Cell{Index: index}
	return nil
}

// SetCrop attaches a crop rectangle to an assigned cell. Containment in
// the source bitmap is checked again at render time; here only the shape
// is validated.
func (s *Session) SetCrop(index int, crop CropRect) error {
	if index < 0 || index >= len(s.Cells) {
		return fmt.Errorf("cell index %d out of range (0-%d)", index, len(s.Cells)-1)
	}
	if !s.Cells[index].Assigned() {
		return fmt.Errorf("cell %d has no artwork to crop", index)
	}
	if crop.Width <= 0 || crop.Height <= 0 || crop.X < 0 || crop.Y < 0 {
		return fmt.Errorf("invalid crop rectangle %+v", crop)
	}
	c := crop
	s.Cells[index].Crop = &c
	return nil
}

// SetPeriod rebuilds the grid and cells for a new reference period.
// Assignments do not survive a period change; the caller re-runs
// auto-fill with a fresh bucket index.
func (s *Session) SetPeriod(ref time.Time, grid calendar.Grid, cellCount int) {
	s.Reference = ref
	s.Grid = grid
	s.resetCells(cellCount)
}
