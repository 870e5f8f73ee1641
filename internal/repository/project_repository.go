package repository

import (
	"context"

	"github.com/custor/portal-api/internal/database"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/utils"
	"gorm.io/gorm"
)

type GormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Creator").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns a page of projects, newest first.
func (r *GormProjectRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Project{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Creator").
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}
