package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public face of a user. Its ID is the auth user id.
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid();not null"`
	FullName    string    `json:"full_name" db:"full_name" gorm:"column:full_name;type:text;not null"`
	Username    string    `json:"username" db:"username" gorm:"column:username;type:text;not null;uniqueIndex:idx_profiles_username"`
	Email       string    `json:"email" db:"email" gorm:"column:email;type:text;not null"`
	AvatarURL   *string   `json:"avatar_url" db:"avatar_url" gorm:"column:avatar_url;type:text"`
	Website     *string   `json:"website" db:"website" gorm:"column:website;type:text"`
	Bio         *string   `json:"bio" db:"bio" gorm:"column:bio;type:text"`
	GithubURL   *string   `json:"github_url" db:"github_url" gorm:"column:github_url;type:text"`
	LinkedinURL *string   `json:"linkedin_url" db:"linkedin_url" gorm:"column:linkedin_url;type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Profile) TableName() string { return "profiles" }

// ProfileChanges is a partial profile update; nil fields are left untouched.
type ProfileChanges struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,username"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	GithubURL   *string `json:"github_url" validate:"omitempty,url"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitempty,url"`
}

// Columns returns the column -> value map of the fields that are set.
func (c ProfileChanges) Columns() map[string]any {
	cols := make(map[string]any)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("full_name", c.FullName)
	set("username", c.Username)
	set("avatar_url", c.AvatarURL)
	set("website", c.Website)
	set("bio", c.Bio)
	set("github_url", c.GithubURL)
	set("linkedin_url", c.LinkedinURL)
	return cols
}

// ProfileStats summarizes the profile population.
type ProfileStats struct {
	TotalProfiles        int64 `json:"total_profiles"`
	ActiveProfiles       int64 `json:"active_profiles"`
	NewProfilesThisMonth int64 `json:"new_profiles_this_month"`
}
