package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/events"
	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/devconnect-app/backend/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProjectQuery selects a window of the project listing. Offset < 0 means
// it is derived from Page.
type ProjectQuery struct {
	Page   int
	Limit  int
	Offset int
	Search string
}

// Image is an uploaded project cover.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ProjectService struct {
	store         database.Store
	uploader      storage.Uploader
	events        events.Publisher
	maxImageBytes int64
}

type ProjectOption func(*ProjectService)

// WithUploader enables AttachImage.
func WithUploader(u storage.Uploader, maxBytes int64) ProjectOption {
	return func(s *ProjectService) {
		s.uploader = u
		if maxBytes > 0 {
			s.maxImageBytes = maxBytes
		}
	}
}

func NewProjectService(store database.Store, publisher events.Publisher, opts ...ProjectOption) *ProjectService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &ProjectService{store: store, events: publisher, maxImageBytes: DefaultMaxImageBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectService) ImagesEnabled() bool {
	return s.uploader != nil
}

// List returns a window of all projects, newest first, optionally filtered
// by a search term matched against title and description.
func (s *ProjectService) List(ctx context.Context, q ProjectQuery) (models.Page[models.ProjectView], error) {
	w := pagination.Normalize(q.Page, q.Limit, q.Offset)
	search := strings.TrimSpace(q.Search)
	repo := s.store.Anon().Projects()

	var rows []models.Project
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.List(gctx, search, w.Limit, w.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.Count(gctx, search)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Page[models.ProjectView]{}, errs.FromStore("list", "projects", err)
	}

	return projectPage(rows, total, w), nil
}

func (s *ProjectService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (models.Page[models.ProjectView], error) {
	if offset < 0 {
		offset = 0
	}
	w := pagination.Normalize(1, limit, offset)
	repo := s.store.Anon().Projects()

	var rows []models.Project
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.ListByAuthor(gctx, userID, w.Limit, w.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.CountByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Page[models.ProjectView]{}, errs.FromStore("list", "projects", err)
	}

	w.Page = w.Offset/w.Limit + 1
	return projectPage(rows, total, w), nil
}

func projectPage(rows []models.Project, total int64, w pagination.Window) models.Page[models.ProjectView] {
	views := make([]models.ProjectView, 0, len(rows))
	for i := range rows {
		views = append(views, models.NewProjectView(&rows[i]))
	}
	return models.Page[models.ProjectView]{
		Items:   views,
		Total:   total,
		Page:    w.Page,
		Limit:   w.Limit,
		Offset:  w.Offset,
		HasMore: pagination.HasMore(w.Offset, w.Limit, total),
	}
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (models.ProjectView, error) {
	project, err := s.store.Anon().Projects().FindByID(ctx, id)
	if err != nil {
		return models.ProjectView{}, projectLookupError(err)
	}
	return models.NewProjectView(project), nil
}

func (s *ProjectService) Create(ctx context.Context, caller models.Caller, in models.ProjectInput) (models.ProjectView, error) {
	if caller.IsZero() {
		return models.ProjectView{}, errs.NewMissingTokenError()
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := checkInput(in); err != nil {
		return models.ProjectView{}, err
	}

	project := &models.Project{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		DemoURL:     in.DemoURL,
		GithubURL:   in.GithubURL,
		TechStack:   pq.StringArray(in.TechStack),
		ImageURL:    in.ImageURL,
		AuthorID:    caller.UserID,
	}

	var created *models.Project
	err := s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		if err := tx.Projects().Create(ctx, project); err != nil {
			return err
		}
		var err error
		created, err = tx.Projects().FindByID(ctx, project.ID)
		return err
	})
	if err != nil {
		return models.ProjectView{}, errs.FromStore("create", "project", err)
	}

	s.publish(ctx, events.New(events.SubjectProjectCreated, caller.UserID, created.ID))
	return models.NewProjectView(created), nil
}

// Update applies the set fields of in. The caller must own the project.
func (s *ProjectService) Update(ctx context.Context, caller models.Caller, id uuid.UUID, in models.ProjectChanges) (models.ProjectView, error) {
	if caller.IsZero() {
		return models.ProjectView{}, errs.NewMissingTokenError()
	}
	if err := checkInput(in); err != nil {
		return models.ProjectView{}, err
	}
	changes := in.Columns()
	if len(changes) == 0 {
		return models.ProjectView{}, errs.NewValidationError("no fields to update", map[string]string{})
	}

	var updated *models.Project
	err := s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		if err := requireOwner(ctx, tx, caller, id); err != nil {
			return err
		}
		if err := applyProjectChanges(ctx, tx, id, changes); err != nil {
			return err
		}
		var err error
		updated, err = tx.Projects().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return models.ProjectView{}, projectLookupError(err)
	}
	return models.NewProjectView(updated), nil
}

func (s *ProjectService) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	if caller.IsZero() {
		return errs.NewMissingTokenError()
	}

	err := s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		if err := requireOwner(ctx, tx, caller, id); err != nil {
			return err
		}
		n, err := tx.Projects().Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.NewAuthorizationError("you can only delete your own projects")
		}
		return nil
	})
	if err != nil {
		return projectLookupError(err)
	}

	log.Info().Str("projectID", id.String()).Str("userID", caller.UserID.String()).Msg("project deleted")
	return nil
}

// AttachImage uploads img to object storage and stores its public URL as the
// project's image_url. Ownership is checked before anything is uploaded.
func (s *ProjectService) AttachImage(ctx context.Context, caller models.Caller, id uuid.UUID, img Image) (models.ProjectView, error) {
	if s.uploader == nil {
		return models.ProjectView{}, errs.NewRequestError("image uploads are not enabled")
	}
	if caller.IsZero() {
		return models.ProjectView{}, errs.NewMissingTokenError()
	}
	ext, ok := imageExtensions[img.ContentType]
	if !ok {
		return models.ProjectView{}, errs.NewInvalidFieldError("image", "must be a png, jpeg, webp or gif image")
	}
	if img.Size <= 0 || img.Size > s.maxImageBytes {
		return models.ProjectView{}, errs.NewInvalidFieldError("image", fmt.Sprintf("must be between 1 and %d bytes", s.maxImageBytes))
	}

	project, err := s.store.Anon().Projects().FindByID(ctx, id)
	if err != nil {
		return models.ProjectView{}, projectLookupError(err)
	}
	if project.AuthorID != caller.UserID {
		return models.ProjectView{}, errs.NewAuthorizationError("you can only modify your own projects")
	}

	key := path.Join("projects", id.String(), uuid.NewString()+ext)
	url, err := s.uploader.Upload(ctx, key, img.ContentType, img.Body, img.Size)
	if err != nil {
		return models.ProjectView{}, errs.Translate(err)
	}

	var updated *models.Project
	err = s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		if err := requireOwner(ctx, tx, caller, id); err != nil {
			return err
		}
		if err := applyProjectChanges(ctx, tx, id, map[string]any{"image_url": url}); err != nil {
			return err
		}
		var findErr error
		updated, findErr = tx.Projects().FindByID(ctx, id)
		return findErr
	})
	if err != nil {
		return models.ProjectView{}, projectLookupError(err)
	}
	return models.NewProjectView(updated), nil
}

// requireOwner loads the project and fails with 404 or 403 before anything
// is mutated.
func requireOwner(ctx context.Context, tx database.Session, caller models.Caller, id uuid.UUID) error {
	project, err := tx.Projects().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if project.AuthorID != caller.UserID {
		return errs.NewAuthorizationError("you can only modify your own projects")
	}
	return nil
}

func applyProjectChanges(ctx context.Context, tx database.Session, id uuid.UUID, changes map[string]any) error {
	n, err := tx.Projects().Update(ctx, id, changes)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NewAuthorizationError("you can only modify your own projects")
	}
	return nil
}

func projectLookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return errs.NewNotFoundError("Project")
	}
	return errs.FromStore("access", "project", err)
}

func (s *ProjectService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("subject", event.Subject).Msg("event not published")
	}
}
