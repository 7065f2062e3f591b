package api

import (
	"net/http"

	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/schema"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes mounts every endpoint. Authentication runs before body
// validation so an anonymous request with a bad body gets 401, not 400.
func setupRoutes(r chi.Router, handlers *routeHandlers, health healthHandler, auth authMiddleware, v validator, imagesEnabled bool) {
	r.Get("/health", health.health())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(v.body(schema.AuthRegister)).Post("/register", handlers.authHandler.register())
			r.With(v.body(schema.AuthLogin)).Post("/login", handlers.authHandler.login())
			r.With(v.body(schema.AuthRefresh)).Post("/refresh", handlers.authHandler.refresh())

			r.Group(func(r chi.Router) {
				r.Use(auth.authenticate)
				r.Post("/logout", handlers.authHandler.logout())
				r.Get("/me", handlers.authHandler.me())
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(v.query(schema.ProjectListQuery)).Get("/", handlers.projectHandler.listProjects())
			r.With(v.params(schema.UserIdParam), v.query(schema.UserProjectsQuery)).
				Get("/user/{userId}", handlers.projectHandler.listUserProjects())
			r.With(v.params(schema.IdParam)).Get("/{id}", handlers.projectHandler.getProject())

			r.Group(func(r chi.Router) {
				r.Use(auth.authenticate)
				r.With(v.body(schema.ProjectCreate)).Post("/", handlers.projectHandler.createProject())
				r.With(v.params(schema.IdParam), v.body(schema.ProjectUpdate)).Put("/{id}", handlers.projectHandler.updateProject())
				r.With(v.params(schema.IdParam)).Delete("/{id}", handlers.projectHandler.deleteProject())
				if imagesEnabled {
					r.With(v.params(schema.IdParam)).Post("/{id}/image", handlers.projectHandler.uploadImage())
				}
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(auth.identify, v.params(schema.ProjectIdParam), v.query(schema.CommentListQuery)).
				Get("/project/{projectId}", handlers.commentHandler.listProjectComments())
			r.With(auth.identify, v.params(schema.CommentIdParam), v.query(schema.PaginationQuery)).
				Get("/{commentId}/replies", handlers.commentHandler.listReplies())

			r.Group(func(r chi.Router) {
				r.Use(auth.authenticate)
				r.With(v.params(schema.ProjectIdParam), v.body(schema.CommentCreate)).
					Post("/project/{projectId}", handlers.commentHandler.createComment())
				r.With(v.params(schema.CommentIdParam)).Post("/{commentId}/like", handlers.commentHandler.toggleLike())
				r.With(v.params(schema.CommentIdParam), v.body(schema.CommentCreate)).
					Post("/{commentId}/replies", handlers.commentHandler.createReply())
			})
		})

		r.Route("/profiles", func(r chi.Router) {
			r.With(v.query(schema.ProfileListQuery)).Get("/", handlers.profileHandler.listProfiles())
			r.Get("/stats", handlers.profileHandler.stats())
			r.With(auth.authenticate, v.body(schema.ProfileUpdate)).Put("/me", handlers.profileHandler.updateMyProfile())
			r.With(v.params(schema.IdParam)).Get("/{id}", handlers.profileHandler.getProfile())
		})
	})

	notFound := notFoundHandler()
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
}

func notFoundHandler() http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "notFound").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, r, errs.NewNotFoundError("route "+r.Method+" "+r.URL.Path))
	}
}
