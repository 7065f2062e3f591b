package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/schema"
	"github.com/devconnect-app/backend/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	auth     *MockAuthService
	projects *MockProjectService
	comments *MockCommentService
	profiles *MockProfileService
	pinger   *MockPinger
}

func newTestRouter(t *testing.T, imagesEnabled bool) (http.Handler, testServices) {
	t.Helper()

	registry, err := schema.Default()
	require.NoError(t, err)

	svc := testServices{
		auth:     new(MockAuthService),
		projects: &MockProjectService{images: imagesEnabled},
		comments: new(MockCommentService),
		profiles: new(MockProfileService),
		pinger:   new(MockPinger),
	}
	router := newRouter(Services{
		Auth:     svc.auth,
		Projects: svc.projects,
		Comments: svc.comments,
		Profiles: svc.profiles,
		Health:   svc.pinger,
	}, registry, withConfig(map[string]string{"HTTP_REQUEST_LOGGING": "false"}))

	return router, svc
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, "error envelope carries details")
	code, _ := details["code"].(string)
	return code
}

func TestRegisterShortPasswordIsRejectedBeforeTheService(t *testing.T) {
	router, svc := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     "ada@example.com",
		"password":  "short",
		"full_name": "Ada Lovelace",
		"username":  "ada",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
	validation := body["details"].(map[string]any)["validation_errors"].(map[string]any)
	assert.Contains(t, validation, "password")
	svc.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterReturnsUserAndSession(t *testing.T) {
	router, svc := newTestRouter(t, false)
	userID := uuid.New()

	svc.auth.On("Register", mock.Anything, models.Registration{
		Email:    "ada@example.com",
		Password: "correct horse",
		FullName: "Ada Lovelace",
		Username: "ada",
	}).Return(
		models.AuthUser{ID: userID, Email: "ada@example.com"},
		models.AuthSession{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer", ExpiresIn: 900},
		nil,
	)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     "ada@example.com",
		"password":  "correct horse",
		"full_name": "Ada Lovelace",
		"username":  "ada",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	user := body["user"].(map[string]any)
	assert.Equal(t, userID.String(), user["id"])
	session := body["session"].(map[string]any)
	assert.Equal(t, "access", session["access_token"])
	svc.auth.AssertExpectations(t)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.auth.On("Login", mock.Anything, mock.Anything).
		Return(models.AuthUser{}, models.AuthSession{}, errs.NewInvalidCredentialsError())

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTHENTICATION_ERROR", errorCode(t, body))
}

func TestProjectListForwardsOversizedLimit(t *testing.T) {
	router, svc := newTestRouter(t, false)

	svc.projects.On("List", mock.Anything, services.ProjectQuery{Page: 1, Limit: 200, Offset: -1, Search: ""}).
		Return(models.Page[models.ProjectView]{
			Items: []models.ProjectView{{ID: uuid.New(), Title: "Compiler"}},
			Total: 101,
			Page:  1,
			Limit: 100,
		}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/projects?limit=200", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 1)
	meta := body["pagination"].(map[string]any)
	assert.EqualValues(t, 100, meta["limit"])
	assert.EqualValues(t, 101, meta["total"])
	assert.EqualValues(t, 2, meta["total_pages"])
	assert.Equal(t, true, meta["has_next"])
	assert.Equal(t, false, meta["has_prev"])
	svc.projects.AssertExpectations(t)
}

func TestGetProjectRejectsMalformedID(t *testing.T) {
	router, svc := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodGet, "/api/projects/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
	svc.projects.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetProjectNotFound(t *testing.T) {
	router, svc := newTestRouter(t, false)
	id := uuid.New()
	svc.projects.On("Get", mock.Anything, id).Return(models.ProjectView{}, errs.NewNotFoundError("Project"))

	rec, body := doJSON(t, router, http.MethodGet, "/api/projects/"+id.String(), "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", body["error"])
}

func TestUpdateProjectByNonOwnerIsForbidden(t *testing.T) {
	router, svc := newTestRouter(t, false)
	caller := models.Caller{UserID: uuid.New(), Email: "eve@example.com"}
	id := uuid.New()

	svc.auth.On("Authenticate", mock.Anything, "token").Return(caller, nil)
	svc.projects.On("Update", mock.Anything, caller, id, mock.Anything).
		Return(models.ProjectView{}, errs.NewAuthorizationError("you can only modify your own projects"))

	rec, body := doJSON(t, router, http.MethodPut, "/api/projects/"+id.String(), "token", map[string]any{"title": "Hijacked"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AUTHORIZATION_ERROR", errorCode(t, body))
}

func TestCommentCreateRequiresAuthBeforeValidation(t *testing.T) {
	router, svc := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodPost, "/api/comments/project/"+uuid.NewString(), "", map[string]any{"content": ""})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTHENTICATION_ERROR", errorCode(t, body))
	svc.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommentCreateRejectsBlankContent(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.auth.On("Authenticate", mock.Anything, "token").Return(models.Caller{UserID: uuid.New()}, nil)

	rec, body := doJSON(t, router, http.MethodPost, "/api/comments/project/"+uuid.NewString(), "token", map[string]any{"content": "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.auth.On("Authenticate", mock.Anything, "expired").Return(models.Caller{}, errs.NewExpiredTokenError())

	rec, body := doJSON(t, router, http.MethodGet, "/api/auth/me", "expired", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTHENTICATION_ERROR", errorCode(t, body))
}

func TestCommentListingTreatsBadTokenAsAnonymous(t *testing.T) {
	router, svc := newTestRouter(t, false)
	projectID := uuid.New()

	svc.auth.On("Authenticate", mock.Anything, "garbage").Return(models.Caller{}, errs.NewInvalidTokenError())
	svc.comments.On("ListForProject", mock.Anything, projectID,
		services.CommentQuery{Page: 2, Limit: 5, Sort: models.SortPopular}, models.Caller{}).
		Return(models.Page[models.CommentView]{Items: []models.CommentView{}, Total: 6, Page: 2, Limit: 5}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/comments/project/"+projectID.String()+"?page=2&limit=5&sort=popular", "garbage", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	meta := body["pagination"].(map[string]any)
	assert.Equal(t, true, meta["has_prev"])
	assert.Equal(t, false, meta["has_next"])
	svc.comments.AssertExpectations(t)
}

func TestCommentListingRejectsLimitOverMax(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodGet, "/api/comments/project/"+uuid.NewString()+"?limit=101", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
}

func TestToggleLikeMergesStateIntoEnvelope(t *testing.T) {
	router, svc := newTestRouter(t, false)
	caller := models.Caller{UserID: uuid.New()}
	commentID := uuid.New()

	svc.auth.On("Authenticate", mock.Anything, "token").Return(caller, nil)
	svc.comments.On("ToggleLike", mock.Anything, caller, commentID).Return(models.LikeState{LikesCount: 1, IsLiked: true}, nil)

	rec, body := doJSON(t, router, http.MethodPost, "/api/comments/"+commentID.String()+"/like", "token", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Like added", body["message"])
	assert.EqualValues(t, 1, body["likes_count"])
	assert.Equal(t, true, body["is_liked"])
	assert.NotContains(t, body, "data")
}

func TestPublicProfileReadsOmitEmail(t *testing.T) {
	router, svc := newTestRouter(t, false)
	stored := &models.Profile{ID: uuid.New(), FullName: "Ada Lovelace", Username: "ada", Email: "ada@example.com"}
	public := models.NewPublicProfile(stored)

	svc.profiles.On("Get", mock.Anything, stored.ID).Return(public, nil)
	svc.profiles.On("List", mock.Anything, "", 1, 10).
		Return(models.Page[models.PublicProfile]{Items: []models.PublicProfile{public}, Total: 1, Page: 1, Limit: 10}, nil)

	for _, path := range []string{"/api/profiles/" + stored.ID.String(), "/api/profiles"} {
		rec, _ := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"username":"ada"`, path)
		assert.NotContains(t, rec.Body.String(), "email", path)
	}
}

func TestCommentLengthIsCheckedAfterTrimming(t *testing.T) {
	router, svc := newTestRouter(t, false)
	caller := models.Caller{UserID: uuid.New()}
	projectID := uuid.New()
	padded := "  " + strings.Repeat("x", 2000) + "  "

	svc.auth.On("Authenticate", mock.Anything, "token").Return(caller, nil)
	svc.comments.On("Create", mock.Anything, caller, projectID, padded).
		Return(models.CommentView{ID: uuid.New(), Content: strings.TrimSpace(padded)}, nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/comments/project/"+projectID.String(), "token", map[string]any{"content": padded})

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.comments.AssertExpectations(t)
}

func TestHugePageIsRejected(t *testing.T) {
	router, svc := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodGet, "/api/projects?page=100000000000000000&limit=100", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
	svc.projects.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProfileStatsAreFlattened(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.profiles.On("Stats", mock.Anything).Return(models.ProfileStats{TotalProfiles: 7, ActiveProfiles: 3, NewProfilesThisMonth: 2}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/profiles/stats", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, body["total_profiles"])
	assert.EqualValues(t, 3, body["active_profiles"])
	assert.EqualValues(t, 2, body["new_profiles_this_month"])
}

func TestProfileUpdateRejectsUnknownFields(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.auth.On("Authenticate", mock.Anything, "token").Return(models.Caller{UserID: uuid.New()}, nil)

	rec, body := doJSON(t, router, http.MethodPut, "/api/profiles/me", "token", map[string]any{"email": "new@example.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
	svc.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnknownRouteAndMethodReturnNotFoundEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec, body := doJSON(t, router, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND_ERROR", errorCode(t, body))

	rec, body = doJSON(t, router, http.MethodPatch, "/api/projects/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND_ERROR", errorCode(t, body))
}

func TestImageRouteOnlyWhenStorageEnabled(t *testing.T) {
	router, _ := newTestRouter(t, false)
	rec, _ := doJSON(t, router, http.MethodPost, "/api/projects/"+uuid.NewString()+"/image", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageUpload(t *testing.T) {
	router, svc := newTestRouter(t, true)
	caller := models.Caller{UserID: uuid.New()}
	id := uuid.New()
	url := "https://cdn.example.com/projects/cover.png"

	svc.auth.On("Authenticate", mock.Anything, "token").Return(caller, nil)
	svc.projects.On("AttachImage", mock.Anything, caller, id, "image/png", int64(4)).
		Return(models.ProjectView{ID: id, ImageURL: &url}, nil)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+id.String()+"/image", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	project := body["project"].(map[string]any)
	assert.Equal(t, url, project["image_url"])
	svc.projects.AssertExpectations(t)
}

func TestPanicBecomesInternalErrorEnvelope(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.profiles.On("Stats", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(models.ProfileStats{}, nil)

	rec, body := doJSON(t, router, http.MethodGet, "/api/profiles/stats", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, body))
}

func TestHealthReportsDatabaseState(t *testing.T) {
	router, svc := newTestRouter(t, false)
	svc.pinger.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	svc.pinger.On("Ping", mock.Anything).Return(nil).Once()

	rec, body := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])

	_, body = doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
}
