package handlers

import (
	"net/http"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/layout"
)

// TemplatesHandler serves the template catalog.
type TemplatesHandler struct {
	config *config.Config
}

// NewTemplatesHandler creates a new templates handler.
func NewTemplatesHandler(cfg *config.Config) *TemplatesHandler {
	return &TemplatesHandler{config: cfg}
}

type templateJSON struct {
	Name           string `json:"name"`
	Width          int    `json:"width"`
	SquareHeight   int    `json:"squareHeight,omitempty"`
	PortraitHeight int    `json:"portraitHeight,omitempty"`
	FixedHeight    int    `json:"fixedHeight,omitempty"`
	RowDerived     bool   `json:"rowDerived,omitempty"`
}

// List returns every template kind with its canvas geometry.
func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make([]templateJSON, 0, len(layout.Kinds()))
	for _, kind := range layout.Kinds() {
		spec, ok := h.config.Canvas(string(kind))
		if !ok {
			continue
		}
		out = append(out, templateJSON{
			Name:           string(kind),
			Width:          spec.Width,
			SquareHeight:   spec.SquareHeight,
			PortraitHeight: spec.PortraitHeight,
			FixedHeight:    spec.FixedHeight,
			RowDerived:     spec.HeaderHeight > 0 && spec.RowHeight > 0,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": out})
}
