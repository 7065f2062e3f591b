package database

import (
	"context"
	"time"

	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error)
	List(ctx context.Context, search string, limit, offset int) ([]models.Profile, error)
	Count(ctx context.Context, search string) (int64, error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error)
	Stats(ctx context.Context, activeSince, createdSince time.Time) (models.ProfileStats, error)
}

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db}
}

func (r *ProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID returns ErrNotFound when no profile has id.
func (r *ProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("lower(username) = lower(?) AND id <> ?", username, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *ProfileRepo) search(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Profile{})
	if search != "" {
		pattern := containsPattern(search)
		q = q.Where("full_name ILIKE ? OR username ILIKE ?", pattern, pattern)
	}
	return q
}

// List returns profiles newest first, optionally filtered by name or username.
func (r *ProfileRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.search(ctx, search).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepo) Count(ctx context.Context, search string) (int64, error) {
	var n int64
	err := r.search(ctx, search).Count(&n).Error
	return n, err
}

// Update applies changes and reports how many rows were touched.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error) {
	changes["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(changes)
	return res.RowsAffected, res.Error
}

func (r *ProfileRepo) Stats(ctx context.Context, activeSince, createdSince time.Time) (models.ProfileStats, error) {
	var stats models.ProfileStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			count(*) AS total_profiles,
			count(*) FILTER (WHERE updated_at >= ?) AS active_profiles,
			count(*) FILTER (WHERE created_at >= ?) AS new_profiles_this_month
		FROM profiles
	`, activeSince, createdSince).Scan(&stats).Error
	return stats, err
}
