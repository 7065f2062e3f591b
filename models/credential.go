package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential holds the login secret for a user. It never leaves the auth service.
type Credential struct {
	UserID       uuid.UUID `json:"-" db:"user_id" gorm:"column:user_id;type:uuid;primaryKey;not null"`
	Email        string    `json:"-" db:"email" gorm:"column:email;type:text;not null;uniqueIndex:idx_auth_credentials_email"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time `json:"-" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;default:now()"`

	Profile *Profile `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Credential) TableName() string { return "auth_credentials" }
