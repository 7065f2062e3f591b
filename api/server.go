package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devconnect-app/backend/config"
	"github.com/devconnect-app/backend/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// NewServer builds the HTTP server from configuration, the schema registry
// and the service set.
func NewServer(c map[string]string, registry *schema.Registry, services Services) (Server, error) {
	if services.Auth == nil || services.Projects == nil || services.Comments == nil || services.Profiles == nil {
		return Server{}, fmt.Errorf("api: every service must be provided")
	}
	if registry == nil {
		var err error
		if registry, err = schema.Default(); err != nil {
			return Server{}, fmt.Errorf("building schema registry: %w", err)
		}
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(services, registry, withConfig(c), withStartupTime(startupTime))

	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadTimeout:       config.GetDuration(c, "READ_TIMEOUT_SECONDS", time.Second, 30),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", time.Second, 30),
		IdleTimeout:       config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", time.Second, 120),
	}

	return Server{server, startupTime}, nil
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

func newRouter(services Services, registry *schema.Registry, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	if config.GetBool(router.config, "HTTP_REQUEST_LOGGING", true) {
		chiRouter.Use(ColoredHTTPLoggingMiddleware)
	}
	chiRouter.Use(corsHandler(router.config))

	handlers := initializeHandlers(services)
	health := newHealthHandler(services.Health, router.startupTime)
	authMiddleware := newAuthMiddleware(services.Auth)
	validator := newValidator(registry)

	setupRoutes(chiRouter, handlers, health, authMiddleware, validator, services.Projects.ImagesEnabled())

	return chiRouter
}

// corsHandler allows the configured ACCEPTED_ORIGINS, or any origin when
// none are configured.
func corsHandler(c map[string]string) func(http.Handler) http.Handler {
	origins := config.GetList(c, "ACCEPTED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	log.Debug().Strs("origins", origins).Msg("cors configured")

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) StartupTime() time.Time {
	return s.startupTime
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
