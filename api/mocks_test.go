package api

import (
	"context"

	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (models.Caller, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Caller), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, in models.Registration) (models.AuthUser, models.AuthSession, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.AuthUser), args.Get(1).(models.AuthSession), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, in models.Login) (models.AuthUser, models.AuthSession, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.AuthUser), args.Get(1).(models.AuthSession), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, caller models.Caller) error {
	return m.Called(ctx, caller).Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (models.AuthSession, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(models.AuthSession), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, caller models.Caller) (models.AuthUser, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(models.AuthUser), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
	images bool
}

func (m *MockProjectService) List(ctx context.Context, q services.ProjectQuery) (models.Page[models.ProjectView], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(models.Page[models.ProjectView]), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id uuid.UUID) (models.ProjectView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ProjectView), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, caller models.Caller, in models.ProjectInput) (models.ProjectView, error) {
	args := m.Called(ctx, caller, in)
	return args.Get(0).(models.ProjectView), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, caller models.Caller, id uuid.UUID, in models.ProjectChanges) (models.ProjectView, error) {
	args := m.Called(ctx, caller, id, in)
	return args.Get(0).(models.ProjectView), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockProjectService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (models.Page[models.ProjectView], error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).(models.Page[models.ProjectView]), args.Error(1)
}

func (m *MockProjectService) AttachImage(ctx context.Context, caller models.Caller, id uuid.UUID, img services.Image) (models.ProjectView, error) {
	args := m.Called(ctx, caller, id, img.ContentType, img.Size)
	return args.Get(0).(models.ProjectView), args.Error(1)
}

func (m *MockProjectService) ImagesEnabled() bool {
	return m.images
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) ListForProject(ctx context.Context, projectID uuid.UUID, q services.CommentQuery, viewer models.Caller) (models.Page[models.CommentView], error) {
	args := m.Called(ctx, projectID, q, viewer)
	return args.Get(0).(models.Page[models.CommentView]), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, caller models.Caller, projectID uuid.UUID, content string) (models.CommentView, error) {
	args := m.Called(ctx, caller, projectID, content)
	return args.Get(0).(models.CommentView), args.Error(1)
}

func (m *MockCommentService) ListReplies(ctx context.Context, commentID uuid.UUID, page, limit int, viewer models.Caller) (models.Page[models.CommentView], error) {
	args := m.Called(ctx, commentID, page, limit, viewer)
	return args.Get(0).(models.Page[models.CommentView]), args.Error(1)
}

func (m *MockCommentService) CreateReply(ctx context.Context, caller models.Caller, commentID uuid.UUID, content string) (models.CommentView, error) {
	args := m.Called(ctx, caller, commentID, content)
	return args.Get(0).(models.CommentView), args.Error(1)
}

func (m *MockCommentService) ToggleLike(ctx context.Context, caller models.Caller, commentID uuid.UUID) (models.LikeState, error) {
	args := m.Called(ctx, caller, commentID)
	return args.Get(0).(models.LikeState), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) List(ctx context.Context, search string, page, limit int) (models.Page[models.PublicProfile], error) {
	args := m.Called(ctx, search, page, limit)
	return args.Get(0).(models.Page[models.PublicProfile]), args.Error(1)
}

func (m *MockProfileService) Get(ctx context.Context, id uuid.UUID) (models.PublicProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.PublicProfile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, caller models.Caller, in models.ProfileChanges) (*models.Profile, error) {
	args := m.Called(ctx, caller, in)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *MockProfileService) Stats(ctx context.Context) (models.ProfileStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ProfileStats), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
