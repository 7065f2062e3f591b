package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const fallbackUsername = "Usuario"

// Author is the nested author projection attached to projects and comments.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	FullName  *string   `json:"full_name"`
}

// DisplayUsername picks the profile username, else the first word of the
// full name when it is not an email address, else "Usuario".
func DisplayUsername(p *Profile) string {
	if p == nil {
		return fallbackUsername
	}
	if p.Username != "" {
		return p.Username
	}
	if p.FullName != "" && !strings.Contains(p.FullName, "@") {
		if first := strings.Fields(p.FullName); len(first) > 0 {
			return first[0]
		}
	}
	return fallbackUsername
}

// NewAuthor projects p. A nil profile still yields an author carrying id.
func NewAuthor(id uuid.UUID, p *Profile) Author {
	a := Author{ID: id, Username: DisplayUsername(p)}
	if p != nil {
		a.AvatarURL = p.AvatarURL
		if p.FullName != "" {
			fullName := p.FullName
			a.FullName = &fullName
		}
	}
	return a
}

// PublicProfile is what anyone may read about a user. It never carries the
// email address.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatar_url"`
	Website     *string   `json:"website"`
	Bio         *string   `json:"bio"`
	GithubURL   *string   `json:"github_url"`
	LinkedinURL *string   `json:"linkedin_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewPublicProfile(p *Profile) PublicProfile {
	return PublicProfile{
		ID:          p.ID,
		FullName:    p.FullName,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Website:     p.Website,
		Bio:         p.Bio,
		GithubURL:   p.GithubURL,
		LinkedinURL: p.LinkedinURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectView is a project enriched with its author.
type ProjectView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DemoURL     *string   `json:"demo_url"`
	GithubURL   *string   `json:"github_url"`
	TechStack   []string  `json:"tech_stack"`
	ImageURL    *string   `json:"image_url"`
	AuthorID    uuid.UUID `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      Author    `json:"author"`
}

func NewProjectView(p *Project) ProjectView {
	techStack := []string(p.TechStack)
	if techStack == nil {
		techStack = []string{}
	}
	return ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		DemoURL:     p.DemoURL,
		GithubURL:   p.GithubURL,
		TechStack:   techStack,
		ImageURL:    p.ImageURL,
		AuthorID:    p.AuthorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Author:      NewAuthor(p.AuthorID, p.Author),
	}
}

// CommentView is a comment enriched with its author and the viewer's like state.
type CommentView struct {
	ID           uuid.UUID  `json:"id"`
	Content      string     `json:"content"`
	AuthorID     uuid.UUID  `json:"author_id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ParentID     *uuid.UUID `json:"parent_id"`
	LikesCount   int64      `json:"likes_count"`
	RepliesCount int64      `json:"replies_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Author       Author     `json:"author"`
	IsLiked      bool       `json:"is_liked"`
}

func NewCommentView(c *Comment, isLiked bool) CommentView {
	return CommentView{
		ID:           c.ID,
		Content:      c.Content,
		AuthorID:     c.AuthorID,
		ProjectID:    c.ProjectID,
		ParentID:     c.ParentID,
		LikesCount:   c.LikesCount,
		RepliesCount: c.RepliesCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Author:       NewAuthor(c.AuthorID, c.Author),
		IsLiked:      isLiked,
	}
}

// LikeState is the result of a like toggle, read back from the store.
type LikeState struct {
	LikesCount int64 `json:"likes_count"`
	IsLiked    bool  `json:"is_liked"`
}

// Page is one window of a listing together with the total row count.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	Limit   int
	Offset  int
	HasMore bool
}
