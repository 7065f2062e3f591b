package api

import (
	"context"

	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/services"
	"github.com/google/uuid"
)

// The services the handlers depend on. The services package implements them.

type AuthService interface {
	Authenticator
	Register(ctx context.Context, in models.Registration) (models.AuthUser, models.AuthSession, error)
	Login(ctx context.Context, in models.Login) (models.AuthUser, models.AuthSession, error)
	Logout(ctx context.Context, caller models.Caller) error
	Refresh(ctx context.Context, refreshToken string) (models.AuthSession, error)
	CurrentUser(ctx context.Context, caller models.Caller) (models.AuthUser, error)
}

type ProjectService interface {
	List(ctx context.Context, q services.ProjectQuery) (models.Page[models.ProjectView], error)
	Get(ctx context.Context, id uuid.UUID) (models.ProjectView, error)
	Create(ctx context.Context, caller models.Caller, in models.ProjectInput) (models.ProjectView, error)
	Update(ctx context.Context, caller models.Caller, id uuid.UUID, in models.ProjectChanges) (models.ProjectView, error)
	Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (models.Page[models.ProjectView], error)
	AttachImage(ctx context.Context, caller models.Caller, id uuid.UUID, img services.Image) (models.ProjectView, error)
	ImagesEnabled() bool
}

type CommentService interface {
	ListForProject(ctx context.Context, projectID uuid.UUID, q services.CommentQuery, viewer models.Caller) (models.Page[models.CommentView], error)
	Create(ctx context.Context, caller models.Caller, projectID uuid.UUID, content string) (models.CommentView, error)
	ListReplies(ctx context.Context, commentID uuid.UUID, page, limit int, viewer models.Caller) (models.Page[models.CommentView], error)
	CreateReply(ctx context.Context, caller models.Caller, commentID uuid.UUID, content string) (models.CommentView, error)
	ToggleLike(ctx context.Context, caller models.Caller, commentID uuid.UUID) (models.LikeState, error)
}

type ProfileService interface {
	List(ctx context.Context, search string, page, limit int) (models.Page[models.PublicProfile], error)
	Get(ctx context.Context, id uuid.UUID) (models.PublicProfile, error)
	Update(ctx context.Context, caller models.Caller, in models.ProfileChanges) (*models.Profile, error)
	Stats(ctx context.Context) (models.ProfileStats, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router needs.
type Services struct {
	Auth     AuthService
	Projects ProjectService
	Comments CommentService
	Profiles ProfileService
	Health   Pinger
}

var (
	_ AuthService    = (*services.AuthService)(nil)
	_ ProjectService = (*services.ProjectService)(nil)
	_ CommentService = (*services.CommentService)(nil)
	_ ProfileService = (*services.ProfileService)(nil)
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svc Services) *routeHandlers {
	return &routeHandlers{
		authHandler:    newAuthHandler(svc.Auth),
		projectHandler: newProjectHandler(svc.Projects),
		commentHandler: newCommentHandler(svc.Comments),
		profileHandler: newProfileHandler(svc.Profiles),
	}
}
