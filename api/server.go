package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/myaicommunity/agenthub/auth"
	"github.com/myaicommunity/agenthub/config"
	"github.com/myaicommunity/agenthub/database"
	"github.com/myaicommunity/agenthub/storage"
)

type Server struct {
	*http.Server
}

func NewServer(database database.Database, files storage.FileStore, uploadsDir string) (Server, error) {
	c := config.New()

	port := config.GetString(c, "PORT", "5000")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	secret := config.GetString(c, "JWT_SECRET", "")
	if secret == "" {
		return Server{}, fmt.Errorf("JWT_SECRET is not set")
	}

	router := newRouter(database, files, uploadsDir, auth.NewTokenIssuer(secret), withConfig(c), withStartupTime(time.Now()))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(database database.Database, files storage.FileStore, uploadsDir string, issuer auth.TokenIssuer, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	maxUpload := config.GetInt64(router.config, "UPLOAD_MAX_BYTES", 10<<20)
	rateLimit := config.GetInt(router.config, "RATE_LIMIT_REQUESTS", 100)
	rateWindow := time.Duration(config.GetInt(router.config, "RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute

	handlers := initializeHandlers(database, issuer, files, maxUpload, router.startupTime)
	authMiddleware := newAuthMiddleware(issuer, database.UserRepo())

	acceptedOrigins := strings.Split(config.GetString(router.config, "CLIENT_URL", "http://localhost:5173"), ",")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	setupRoutes(chiRouter, handlers, authMiddleware, rateLimit, rateWindow, uploadsDir)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
