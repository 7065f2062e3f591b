package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to a project and optionally replies to another comment.
// LikesCount and RepliesCount are denormalized counters.
type Comment struct {
	ID           uuid.UUID  `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Content      string     `json:"content" db:"content" gorm:"column:content;type:text;not null"`
	AuthorID     uuid.UUID  `json:"author_id" db:"author_id" gorm:"column:author_id;type:uuid;not null;index:idx_comments_author_id"`
	ProjectID    uuid.UUID  `json:"project_id" db:"project_id" gorm:"column:project_id;type:uuid;not null;index:idx_comments_project_id"`
	ParentID     *uuid.UUID `json:"parent_id" db:"parent_id" gorm:"column:parent_id;type:uuid;index:idx_comments_parent_id"`
	LikesCount   int64      `json:"likes_count" db:"likes_count" gorm:"column:likes_count;type:integer;not null;default:0;check:likes_count >= 0"`
	RepliesCount int64      `json:"replies_count" db:"replies_count" gorm:"column:replies_count;type:integer;not null;default:0;check:replies_count >= 0"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at" gorm:"column:updated_at;type:timestamptz;not null;default:now()"`

	Author  *Profile `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Parent  *Comment `json:"-" gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string { return "comments" }

// CommentSort is the ordering of a comment listing.
type CommentSort string

const (
	SortNewest  CommentSort = "newest"
	SortOldest  CommentSort = "oldest"
	SortPopular CommentSort = "popular"
)

// ParseCommentSort falls back to newest for anything it does not know.
func ParseCommentSort(s string) CommentSort {
	switch CommentSort(s) {
	case SortOldest, SortPopular:
		return CommentSort(s)
	}
	return SortNewest
}
