package server

import (
	"net/http"

	"github.com/cloo-solutions/khub/internal/api/handlers"
	"github.com/cloo-solutions/khub/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger          zerolog.Logger
	NewSessionID    func() string
	ExplorerHandler *handlers.ExplorerHandler
	// TelemetryHandler is nil when no collector database is configured.
	TelemetryHandler *handlers.TelemetryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.ExplorerHandler.Health)
	r.Get("/status", cfg.ExplorerHandler.Status)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionID(cfg.NewSessionID))

		r.Post("/search", cfg.ExplorerHandler.Search)
		r.Post("/compare", cfg.ExplorerHandler.Compare)
		r.Post("/vote", cfg.ExplorerHandler.Vote)
		r.Get("/state", cfg.ExplorerHandler.State)
	})

	if cfg.TelemetryHandler != nil {
		r.Route("/logs", func(r chi.Router) {
			r.Post("/", cfg.TelemetryHandler.Record)
			r.Get("/", cfg.TelemetryHandler.List)
			r.Get("/tally", cfg.TelemetryHandler.Tally)
		})
	}

	return r
}
