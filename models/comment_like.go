package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentLike records that a user likes a comment. The pair is unique.
type CommentLike struct {
	CommentID uuid.UUID `json:"comment_id" db:"comment_id" gorm:"column:comment_id;type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"column:user_id;type:uuid;primaryKey;not null;index:idx_comment_likes_user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;default:now()"`

	Comment *Comment `json:"-" gorm:"foreignKey:CommentID;references:ID;constraint:OnDelete:CASCADE"`
	User    *Profile `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (CommentLike) TableName() string { return "comment_likes" }
