package apiapp

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/handlers"
)

type Dependencies struct {
	SessionService *sessionsvc.Service
	SwipeLimiter   handlers.SwipeLimiter
	Logger         *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	sessionHandler := handlers.NewSessionHandler(deps.SessionService, deps.SwipeLimiter, deps.Logger)
	swipeHandler := handlers.NewSwipeHandler(deps.SessionService, deps.SwipeLimiter, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.SessionService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Post("/", sessionHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", sessionHandler.Delete)
			r.Get("/candidate", sessionHandler.Candidate)
			r.Post("/swipes", swipeHandler.Swipe)
			r.Post("/undo", swipeHandler.Undo)
			r.Post("/direct-matches", matchesHandler.Direct)
			r.Get("/matches", matchesHandler.List)
			r.Post("/matches/{match_id}/extend", matchesHandler.Extend)
		})
	})
}
