package database

import (
	"context"

	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository interface {
	Exists(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
	Insert(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
	LikedAmong(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	Count(ctx context.Context, commentID uuid.UUID) (int64, error)
}

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

func (r *LikeRepo) Exists(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&n).Error
	return n > 0, err
}

// Insert adds the like and reports whether a row was actually created.
func (r *LikeRepo) Insert(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	like := models.CommentLike{CommentID: commentID, UserID: userID}
	res := r.db.WithContext(ctx).
		Omit("Comment", "User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the like and reports whether a row was actually removed.
func (r *LikeRepo) Delete(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{})
	return res.RowsAffected > 0, res.Error
}

// LikedAmong reports which of commentIDs userID has liked.
func (r *LikeRepo) LikedAmong(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *LikeRepo) Count(ctx context.Context, commentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&n).Error
	return n, err
}
