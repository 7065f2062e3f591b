package database

import (
	"context"
	"time"

	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Project, error)
	Count(ctx context.Context, search string) (int64, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Project, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func (r *ProjectRepo) search(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if search != "" {
		pattern := containsPattern(search)
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return q
}

// List returns projects newest first with their author preloaded.
func (r *ProjectRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.search(ctx, search).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepo) Count(ctx context.Context, search string) (int64, error) {
	var n int64
	err := r.search(ctx, search).Count(&n).Error
	return n, err
}

func (r *ProjectRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

// FindByID returns ErrNotFound when no project has id.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Author").First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *ProjectRepo) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Author").Create(project).Error
}

func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error) {
	changes["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(changes)
	return res.RowsAffected, res.Error
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
