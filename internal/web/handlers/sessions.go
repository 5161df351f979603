package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/export"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/layout"
	"github.com/atelierlog/reportcard/internal/session"
)

// maxUsernameRunes caps the footer handle; longer display names are cut.
const maxUsernameRunes = 24

// SessionsHandler handles the designer session endpoints.
type SessionsHandler struct {
	config   *config.Config
	gallery  *gallery.Gallery
	store    *Store
	pipeline *export.Pipeline
	location *time.Location

	vocabMu sync.Mutex
	vocab   map[int]string
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(cfg *config.Config, g *gallery.Gallery, store *Store, pipeline *export.Pipeline, loc *time.Location) *SessionsHandler {
	return &SessionsHandler{
		config:   cfg,
		gallery:  g,
		store:    store,
		pipeline: pipeline,
		location: loc,
	}
}

type createRequest struct {
	Template  string `json:"template"`
	Reference string `json:"reference"` // "2006-01-02"
}

type artworkJSON struct {
	ID              string `json:"id"`
	ImageURL        string `json:"imageUrl"`
	UploadedAt      string `json:"uploadedAt"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Title           string `json:"title,omitempty"`
}

type sessionResponse struct {
	ID            string                 `json:"id"`
	Template      string                 `json:"template"`
	Reference     string                 `json:"reference"`
	Mode          string                 `json:"mode"`
	Rows          int                    `json:"rows"`
	Columns       int                    `json:"columns"`
	Cells         []session.Cell         `json:"cells"`
	Style         session.StyleSettings  `json:"style"`
	Content       session.ContentOptions `json:"content"`
	Artworks      []artworkJSON          `json:"artworks"`
	AvailableTags []string               `json:"availableTags,omitempty"`
}

// loadVocab fetches the gallery tag vocabulary once; failures leave the
// cache empty and numeric tags fall back to their "#id" form.
func (h *SessionsHandler) loadVocab(ctx context.Context) {
	h.vocabMu.Lock()
	defer h.vocabMu.Unlock()
	if h.vocab != nil {
		return
	}
	if vocab, err := h.gallery.GetTagVocabulary(ctx); err == nil {
		h.vocab = vocab
	}
}

func (h *SessionsHandler) currentVocab() map[int]string {
	h.vocabMu.Lock()
	defer h.vocabMu.Unlock()
	return h.vocab
}

// availableTags collects the distinct tag display names across the
// session's artworks, in first-appearance order.
func availableTags(arts []gallery.Artwork, vocab map[int]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, art := range arts {
		for _, tag := range art.Tags {
			name := tag.Display(vocab)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (h *SessionsHandler) sessionJSON(s *session.Session) sessionResponse {
	arts := s.Artworks()
	artworks := make([]artworkJSON, len(arts))
	for i, art := range arts {
		artworks[i] = artworkJSON{
			ID:              art.ID,
			ImageURL:        art.ImageURL,
			UploadedAt:      art.UploadedAt,
			DurationMinutes: art.DurationMinutes,
			Title:           art.Title,
		}
	}
	return sessionResponse{
		ID:            s.ID,
		Template:      s.Template,
		Reference:     s.Reference.Format("2006-01-02"),
		Mode:          string(s.Grid.Mode),
		Rows:          s.Grid.Rows,
		Columns:       calendar.Columns,
		Cells:         s.Cells,
		Style:         s.Style,
		Content:       s.Content,
		Artworks:      artworks,
		AvailableTags: availableTags(arts, h.currentVocab()),
	}
}

// periodRange is the artwork fetch window for a template and reference.
// Calendar templates fetch their grid span, the yearly template its whole
// year, and recency templates the trailing year.
func periodRange(kind layout.Kind, ref time.Time, grid calendar.Grid) (time.Time, time.Time) {
	switch kind {
	case layout.KindMonthly, layout.KindWeeklySingle, layout.KindWeeklyDouble:
		return grid.Start, grid.End()
	case layout.KindYearly:
		jan1 := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location())
		return jan1, jan1.AddDate(1, 0, -1)
	default:
		return ref.AddDate(-1, 0, 0), ref
	}
}

func clampUsername(name string) string {
	runes := []rune(name)
	if len(runes) > maxUsernameRunes {
		return string(runes[:maxUsernameRunes])
	}
	return name
}

// Create opens a session: it builds the grid for the reference period,
// fetches the period's artworks from the gallery and auto-fills the cells.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	kind, err := layout.ParseKind(req.Template)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ref, err := calendar.ParseReference(req.Reference, h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	grid, err := calendar.BuildGrid(ref, kind.GridMode(), h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, to := periodRange(kind, ref, grid)
	artworks, err := h.gallery.GetArtworks(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusBadGateway, fmt.Sprintf("gallery unavailable: %v", err))
		return
	}

	s := session.New(string(kind), kind.Fill(), ref, grid, kind.CellCount(grid), artworks)

	// The display name and tag vocabulary are cosmetic; their failures
	// must not block the session.
	if profile, err := h.gallery.GetProfile(r.Context()); err == nil {
		s.Content.Username = clampUsername(profile.DisplayName)
	}
	h.loadVocab(r.Context())

	idx := calendar.NewBucketIndex(s.Artworks(), h.location)
	s.AutoFill(idx)

	h.store.Put(s)
	respondJSON(w, http.StatusCreated, h.sessionJSON(s))
}

// Get returns the current session state.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) (int, any) {
		return http.StatusOK, h.sessionJSON(s)
	})
}

// Close discards a session.
func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	ArtworkID string `json:"artworkId"`
}

// Assign puts an artwork into a cell as a manual assignment.
func (h *SessionsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	index, ok := cellIndex(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	h.withSession(w, r, func(s *session.Session) (int, any) {
		if err := s.Assign(index, req.ArtworkID); err != nil {
			return http.StatusUnprocessableEntity, map[string]string{"error": err.Error()}
		}
		return http.StatusOK, h.sessionJSON(s)
	})
}

// ClearCell empties a cell.
func (h *SessionsHandler) ClearCell(w http.ResponseWriter, r *http.Request) {
	index, ok := cellIndex(w, r)
	if !ok {
		return
	}
	h.withSession(w, r, func(s *session.Session) (int, any) {
		if err := s.Clear(index); err != nil {
			return http.StatusUnprocessableEntity, map[string]string{"error": err.Error()}
		}
		return http.StatusOK, h.sessionJSON(s)
	})
}

// SetCrop attaches a crop rectangle to an assigned cell.
func (h *SessionsHandler) SetCrop(w http.ResponseWriter, r *http.Request) {
	index, ok := cellIndex(w, r)
	if !ok {
		return
	}
	var crop session.CropRect
	if err := json.NewDecoder(r.Body).Decode(&crop); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	h.withSession(w, r, func(s *session.Session) (int, any) {
		if err := s.SetCrop(index, crop); err != nil {
			return http.StatusUnprocessableEntity, map[string]string{"error": err.Error()}
		}
		return http.StatusOK, h.sessionJSON(s)
	})
}

// SetStyle replaces the style settings.
func (h *SessionsHandler) SetStyle(w http.ResponseWriter, r *http.Request) {
	var style session.StyleSettings
	if err := json.NewDecoder(r.Body).Decode(&style); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	h.withSession(w, r, func(s *session.Session) (int, any) {
		s.Style = style
		return http.StatusOK, h.sessionJSON(s)
	})
}

// SetContent replaces the content options, clamping the username.
func (h *SessionsHandler) SetContent(w http.ResponseWriter, r *http.Request) {
	var content session.ContentOptions
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	content.Username = clampUsername(content.Username)
	h.withSession(w, r, func(s *session.Session) (int, any) {
		s.Content = content
		return http.StatusOK, h.sessionJSON(s)
	})
}

type periodRequest struct {
	Reference string `json:"reference"`
}

// SetPeriod moves the session to a new reference period. Assignments do
// not survive; the cells are rebuilt and auto-filled from a fresh fetch.
func (h *SessionsHandler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	ref, err := calendar.ParseReference(req.Reference, h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(s *session.Session) (int, any) {
		kind, err := layout.ParseKind(s.Template)
		if err != nil {
			return http.StatusInternalServerError, map[string]string{"error": err.Error()}
		}
		grid, err := calendar.BuildGrid(ref, kind.GridMode(), h.location)
		if err != nil {
			return http.StatusBadRequest, map[string]string{"error": err.Error()}
		}

		from, to := periodRange(kind, ref, grid)
		artworks, err := h.gallery.GetArtworks(r.Context(), from, to)
		if err != nil {
			return http.StatusBadGateway, map[string]string{"error": fmt.Sprintf("gallery unavailable: %v", err)}
		}

		s.SetPeriod(ref, grid, kind.CellCount(grid))
		s.SetArtworks(artworks)
		s.AutoFill(calendar.NewBucketIndex(s.Artworks(), h.location))
		return http.StatusOK, h.sessionJSON(s)
	})
}

// AutoFill re-runs auto-fill over the current cells. Manual assignments
// are preserved.
func (h *SessionsHandler) AutoFill(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) (int, any) {
		filled := s.AutoFill(calendar.NewBucketIndex(s.Artworks(), h.location))
		return http.StatusOK, map[string]any{
			"filled":  filled,
			"session": h.sessionJSON(s),
		}
	})
}

// Preview renders a downscaled best-effort PNG of the current state.
func (h *SessionsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := h.store.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		vm, err := h.buildViewModel(s)
		if err != nil {
			return err
		}
		data, err = h.pipeline.Preview(r.Context(), vm, s)
		return err
	})
	if err != nil {
		h.respondRenderError(w, err)
		return
	}
	respondPNG(w, data)
}

// Export renders the full-resolution PNG. Any asset failure aborts with
// no bytes returned.
func (h *SessionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	var data []byte
	var filename string
	err := h.store.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		vm, err := h.buildViewModel(s)
		if err != nil {
			return err
		}
		filename = fmt.Sprintf("reportcard-%s-%s.png", s.Template, s.Reference.Format("2006-01-02"))
		data, err = h.pipeline.Export(r.Context(), vm, s)
		return err
	})
	if err != nil {
		h.respondRenderError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	respondPNG(w, data)
}

func (h *SessionsHandler) buildViewModel(s *session.Session) (layout.ViewModel, error) {
	kind, err := layout.ParseKind(s.Template)
	if err != nil {
		return layout.ViewModel{}, err
	}
	spec, ok := h.config.Canvas(s.Template)
	if !ok {
		return layout.ViewModel{}, fmt.Errorf("no canvas spec for template %q", s.Template)
	}
	return layout.Build(kind, spec, s)
}

func (h *SessionsHandler) respondRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, export.ErrCrossOrigin):
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("%v; add the host to REPORTCARD_ALLOWED_IMAGE_HOSTS to permit it", err))
	case errors.Is(err, export.ErrExportTimeout):
		respondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		var assetErr *export.AssetError
		if errors.As(err, &assetErr) {
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// withSession runs fn under the session lock and writes its JSON result.
func (h *SessionsHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (int, any)) {
	var status int
	var body any
	err := h.store.Do(chi.URLParam(r, "id"), func(s *session.Session) error {
		status, body = fn(s)
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, status, body)
}

func cellIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cell index")
		return 0, false
	}
	return index, true
}
