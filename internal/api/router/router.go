package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/appforge/discovery-ai-platform/internal/api/handlers"
	apimiddleware "github.com/appforge/discovery-ai-platform/internal/api/middleware"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger      *logging.Logger
	Sessions    *handlers.SessionsHandler
	Profile     *handlers.ProfileHandler
	Corrections *handlers.CorrectionsHandler
	Ops         *handlers.OpsHandler

	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(apimiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", cfg.Ops.Healthz)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/analytics", cfg.Ops.Analytics)

		api.Route("/sessions", func(s chi.Router) {
			s.Post("/", cfg.Sessions.CreateSession)
			s.Route("/{sessionID}", func(one chi.Router) {
				one.Get("/", cfg.Sessions.GetSession)
				one.Delete("/", cfg.Sessions.DeleteSession)
				one.Post("/messages", cfg.Sessions.PostMessage)
				one.Post("/progress", cfg.Sessions.Progress)
			})
		})

		api.Route("/profile", func(p chi.Router) {
			p.Post("/detect", cfg.Profile.Detect)
			p.Post("/batch", cfg.Profile.BatchDetect)
		})

		if cfg.Corrections != nil {
			api.Post("/corrections", cfg.Corrections.Submit)
		}
	})

	return r
}
