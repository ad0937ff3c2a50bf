package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/myaicommunity/agenthub/errs"
)

// setupRoutes wires the REST surface. Everything under /api shares the
// per-address rate limit; mutating project routes additionally require a
// valid bearer token.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, rateLimit int, rateWindow time.Duration, uploadsDir string) {
	// Unknown routes get the failure envelope, not the default plain text.
	notFoundResponder := NewResponder(log.Logger)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		notFoundResponder.WriteError(w, errs.NewNotFoundError("Route not found"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(
			rateLimit,
			rateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.check())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handlers.authHandler.register())
			r.Post("/login", handlers.authHandler.login())
			r.Post("/verify-token", handlers.authHandler.verifyToken())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Get("/me", handlers.authHandler.me())
				r.Post("/logout", handlers.authHandler.logout())
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", handlers.projectHandler.listProjects())
			r.Get("/meta/categories", handlers.projectHandler.listCategories())
			r.Get("/{projectID}", handlers.projectHandler.getProject())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Post("/", handlers.projectHandler.createProject())
				r.Put("/{projectID}", handlers.projectHandler.updateProject())
				r.Delete("/{projectID}", handlers.projectHandler.deleteProject())
			})
		})
	})

	// Uploaded images are served back at the same relative paths they were
	// stored under.
	if uploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
			fileServer.ServeHTTP(w, req)
		})
	}
}
