package database

import (
	"context"
	"strings"

	"github.com/devconnect-app/backend/models"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	Create(ctx context.Context, credential *models.Credential) error
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
}

type CredentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) *CredentialRepo {
	return &CredentialRepo{db}
}

func (r *CredentialRepo) Create(ctx context.Context, credential *models.Credential) error {
	credential.Email = strings.ToLower(credential.Email)
	return r.db.WithContext(ctx).Omit("Profile").Create(credential).Error
}

// FindByEmail matches case-insensitively and returns ErrNotFound on a miss.
func (r *CredentialRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var credential models.Credential
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&credential, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}
