package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/events"
	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	MaxCommentLength  = 2000
	DefaultReplyLimit = 5
)

// CommentQuery selects a window of a comment listing.
type CommentQuery struct {
	Page  int
	Limit int
	Sort  models.CommentSort
}

type CommentService struct {
	store  database.Store
	events events.Publisher
}

func NewCommentService(store database.Store, publisher events.Publisher) *CommentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CommentService{store: store, events: publisher}
}

// ListForProject returns the top-level comments of a project. When viewer is
// set, each comment reports whether the viewer likes it.
func (s *CommentService) ListForProject(ctx context.Context, projectID uuid.UUID, q CommentQuery, viewer models.Caller) (models.Page[models.CommentView], error) {
	if err := checkWindow(q.Page, q.Limit); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	w := pagination.Normalize(q.Page, q.Limit, -1)
	repo := s.store.Anon().Comments()

	var rows []models.Comment
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.ListByProject(gctx, projectID, models.ParseCommentSort(string(q.Sort)), w.Limit, w.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.CountByProject(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Page[models.CommentView]{}, errs.FromStore("list", "comments", err)
	}

	return s.commentPage(ctx, rows, total, w, viewer)
}

// ListReplies returns the replies to a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID uuid.UUID, page, limit int, viewer models.Caller) (models.Page[models.CommentView], error) {
	if err := checkWindow(page, limit); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	if limit == 0 {
		limit = DefaultReplyLimit
	}
	w := pagination.Normalize(page, limit, -1)
	repo := s.store.Anon().Comments()

	if _, err := repo.FindByID(ctx, commentID); err != nil {
		return models.Page[models.CommentView]{}, commentLookupError(err)
	}

	var rows []models.Comment
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.ListReplies(gctx, commentID, w.Limit, w.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.CountReplies(gctx, commentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Page[models.CommentView]{}, errs.FromStore("list", "replies", err)
	}

	return s.commentPage(ctx, rows, total, w, viewer)
}

func (s *CommentService) commentPage(ctx context.Context, rows []models.Comment, total int64, w pagination.Window, viewer models.Caller) (models.Page[models.CommentView], error) {
	liked := map[uuid.UUID]bool{}
	if !viewer.IsZero() && len(rows) > 0 {
		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		var err error
		liked, err = s.store.Anon().Likes().LikedAmong(ctx, viewer.UserID, ids)
		if err != nil {
			return models.Page[models.CommentView]{}, errs.FromStore("list", "likes", err)
		}
	}

	views := make([]models.CommentView, 0, len(rows))
	for i := range rows {
		views = append(views, models.NewCommentView(&rows[i], liked[rows[i].ID]))
	}
	return models.Page[models.CommentView]{
		Items:   views,
		Total:   total,
		Page:    w.Page,
		Limit:   w.Limit,
		Offset:  w.Offset,
		HasMore: pagination.HasMore(w.Offset, w.Limit, total),
	}, nil
}

// Create adds a top-level comment to an existing project.
func (s *CommentService) Create(ctx context.Context, caller models.Caller, projectID uuid.UUID, content string) (models.CommentView, error) {
	if caller.IsZero() {
		return models.CommentView{}, errs.NewMissingTokenError()
	}
	content, err := checkContent(content)
	if err != nil {
		return models.CommentView{}, err
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		Content:   content,
		AuthorID:  caller.UserID,
		ProjectID: projectID,
	}
	var created *models.Comment
	err = s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		exists, err := tx.Projects().Exists(ctx, projectID)
		if err != nil {
			return err
		}
		if !exists {
			return errs.NewNotFoundError("Project")
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		created, err = tx.Comments().FindByID(ctx, comment.ID)
		return err
	})
	if err != nil {
		return models.CommentView{}, errs.FromStore("create", "comment", err)
	}

	event := events.New(events.SubjectCommentCreated, caller.UserID, created.ID)
	event.ProjectID = projectID
	s.publish(ctx, event)
	return models.NewCommentView(created, false), nil
}

// CreateReply answers commentID within the same project and bumps the
// parent's replies_count in the same transaction.
func (s *CommentService) CreateReply(ctx context.Context, caller models.Caller, commentID uuid.UUID, content string) (models.CommentView, error) {
	if caller.IsZero() {
		return models.CommentView{}, errs.NewMissingTokenError()
	}
	content, err := checkContent(content)
	if err != nil {
		return models.CommentView{}, err
	}

	var created *models.Comment
	err = s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		parent, err := tx.Comments().LockByID(ctx, commentID)
		if err != nil {
			return err
		}
		reply := &models.Comment{
			ID:        uuid.New(),
			Content:   content,
			AuthorID:  caller.UserID,
			ProjectID: parent.ProjectID,
			ParentID:  &parent.ID,
		}
		if err := tx.Comments().Create(ctx, reply); err != nil {
			return err
		}
		if err := tx.Comments().AddReplies(ctx, parent.ID, 1); err != nil {
			return err
		}
		created, err = tx.Comments().FindByID(ctx, reply.ID)
		return err
	})
	if err != nil {
		return models.CommentView{}, commentLookupError(err)
	}

	event := events.New(events.SubjectCommentCreated, caller.UserID, created.ID)
	event.ProjectID = created.ProjectID
	s.publish(ctx, event)
	return models.NewCommentView(created, false), nil
}

// ToggleLike flips the caller's like on a comment. The comment row is locked
// for the duration of the transaction, so toggles on the same comment run one
// at a time and the membership change and counter shift commit together. The
// returned count is read back from the store.
func (s *CommentService) ToggleLike(ctx context.Context, caller models.Caller, commentID uuid.UUID) (models.LikeState, error) {
	if caller.IsZero() {
		return models.LikeState{}, errs.NewMissingTokenError()
	}

	var state models.LikeState
	var comment *models.Comment
	err := s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		var err error
		comment, err = tx.Comments().LockByID(ctx, commentID)
		if err != nil {
			return err
		}

		liked, err := tx.Likes().Exists(ctx, commentID, caller.UserID)
		if err != nil {
			return err
		}
		if liked {
			removed, err := tx.Likes().Delete(ctx, commentID, caller.UserID)
			if err != nil {
				return err
			}
			if removed {
				if err := tx.Comments().AddLikes(ctx, commentID, -1); err != nil {
					return err
				}
			}
		} else {
			inserted, err := tx.Likes().Insert(ctx, commentID, caller.UserID)
			if err != nil {
				return err
			}
			if inserted {
				if err := tx.Comments().AddLikes(ctx, commentID, 1); err != nil {
					return err
				}
			}
		}

		count, err := tx.Comments().LikesCount(ctx, commentID)
		if err != nil {
			return err
		}
		state = models.LikeState{LikesCount: count, IsLiked: !liked}
		return nil
	})
	if err != nil {
		return models.LikeState{}, commentLookupError(err)
	}

	subject := events.SubjectCommentUnliked
	if state.IsLiked {
		subject = events.SubjectCommentLiked
	}
	event := events.New(subject, caller.UserID, commentID)
	event.ProjectID = comment.ProjectID
	event.Count = state.LikesCount
	s.publish(ctx, event)
	return state, nil
}

func checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errs.NewMissingRequiredFieldError("content")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", errs.NewInvalidFieldError("content", "must be at most 2000 characters")
	}
	return content, nil
}

// checkWindow rejects explicit out-of-range pagination; zero means default.
func checkWindow(page, limit int) error {
	fields := map[string]string{}
	if page < 0 {
		fields["page"] = "must be at least 1"
	}
	if limit < 0 || limit > pagination.MaxLimit {
		fields["limit"] = "must be between 1 and 100"
	}
	if len(fields) > 0 {
		return errs.NewValidationError("invalid pagination parameters", fields)
	}
	return nil
}

func commentLookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return errs.NewNotFoundError("Comment")
	}
	return errs.FromStore("access", "comment", err)
}

func (s *CommentService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("subject", event.Subject).Msg("event not published")
	}
}
