package database

import (
	"context"

	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID, sort models.CommentSort, limit, offset int) ([]models.Comment, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	ListReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]models.Comment, error)
	CountReplies(ctx context.Context, parentID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	AddLikes(ctx context.Context, id uuid.UUID, delta int) error
	AddReplies(ctx context.Context, id uuid.UUID, delta int) error
	LikesCount(ctx context.Context, id uuid.UUID) (int64, error)
}

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

func orderFor(sort models.CommentSort) string {
	switch sort {
	case models.SortOldest:
		return "created_at ASC"
	case models.SortPopular:
		return "likes_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// ListByProject returns top-level comments of a project with authors preloaded.
func (r *CommentRepo) ListByProject(ctx context.Context, projectID uuid.UUID, sort models.CommentSort, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("project_id = ? AND parent_id IS NULL", projectID).
		Order(orderFor(sort)).
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("project_id = ? AND parent_id IS NULL", projectID).
		Count(&n).Error
	return n, err
}

// ListReplies returns the replies to a comment, oldest first.
func (r *CommentRepo) ListReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) CountReplies(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("parent_id = ?", parentID).Count(&n).Error
	return n, err
}

// FindByID returns ErrNotFound when no comment has id.
func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// LockByID reads the comment with SELECT ... FOR UPDATE. It only serializes
// anything inside a transaction.
func (r *CommentRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author", "Project", "Parent").Create(comment).Error
}

// AddLikes shifts likes_count by delta in place, never below zero.
func (r *CommentRepo) AddLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return r.shift(ctx, id, "likes_count", delta)
}

// AddReplies shifts replies_count by delta in place, never below zero.
func (r *CommentRepo) AddReplies(ctx context.Context, id uuid.UUID, delta int) error {
	return r.shift(ctx, id, "replies_count", delta)
}

func (r *CommentRepo) shift(ctx context.Context, id uuid.UUID, column string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LikesCount re-reads the stored counter.
func (r *CommentRepo) LikesCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var counts []int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Pluck("likes_count", &counts).Error
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, ErrNotFound
	}
	return counts[0], nil
}
