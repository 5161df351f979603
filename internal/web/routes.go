package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/atelierlog/reportcard/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	sessions := handlers.NewSessionsHandler(s.config, s.gallery, s.store, s.pipeline, s.location)
	templates := handlers.NewTemplatesHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", templates.List)

		r.Post("/sessions", sessions.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Close)

			r.Put("/cells/{index}", sessions.Assign)
			r.Delete("/cells/{index}", sessions.ClearCell)
			r.Put("/cells/{index}/crop", sessions.SetCrop)

			r.Put("/style", sessions.SetStyle)
			r.Put("/content", sessions.SetContent)
			r.Put("/period", sessions.SetPeriod)
			r.Post("/autofill", sessions.AutoFill)

			r.Get("/preview.png", sessions.Preview)
			r.Post("/export", sessions.Export)
		})
	})
}
