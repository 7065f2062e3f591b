package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project is a portfolio entry owned by its author.
type Project struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title       string         `json:"title" db:"title" gorm:"column:title;type:text;not null"`
	Description string         `json:"description" db:"description" gorm:"column:description;type:text;not null"`
	DemoURL     *string        `json:"demo_url" db:"demo_url" gorm:"column:demo_url;type:text"`
	GithubURL   *string        `json:"github_url" db:"github_url" gorm:"column:github_url;type:text"`
	TechStack   pq.StringArray `json:"tech_stack" db:"tech_stack" gorm:"column:tech_stack;type:text[];not null;default:'{}'"`
	ImageURL    *string        `json:"image_url" db:"image_url" gorm:"column:image_url;type:text"`
	AuthorID    uuid.UUID      `json:"author_id" db:"author_id" gorm:"column:author_id;type:uuid;not null;index:idx_projects_author_id"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at" gorm:"column:updated_at;type:timestamptz;not null;default:now()"`

	Author *Profile `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string { return "projects" }

// ProjectInput is the writable part of a project.
type ProjectInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=1000"`
	DemoURL     *string  `json:"demo_url" validate:"omitempty,url"`
	GithubURL   *string  `json:"github_url" validate:"omitempty,url"`
	TechStack   []string `json:"tech_stack" validate:"required,min=1,dive,required"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
}

// ProjectChanges is a partial project update; nil fields are left untouched.
type ProjectChanges struct {
	Title       *string   `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string   `json:"description" validate:"omitempty,min=10,max=1000"`
	DemoURL     *string   `json:"demo_url" validate:"omitempty,url"`
	GithubURL   *string   `json:"github_url" validate:"omitempty,url"`
	TechStack   *[]string `json:"tech_stack" validate:"omitempty,min=1,dive,required"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,url"`
}

// Columns returns the column -> value map of the fields that are set.
func (c ProjectChanges) Columns() map[string]any {
	cols := make(map[string]any)
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.DemoURL != nil {
		cols["demo_url"] = *c.DemoURL
	}
	if c.GithubURL != nil {
		cols["github_url"] = *c.GithubURL
	}
	if c.TechStack != nil {
		cols["tech_stack"] = pq.StringArray(*c.TechStack)
	}
	if c.ImageURL != nil {
		cols["image_url"] = *c.ImageURL
	}
	return cols
}
