package repository

import (
	"context"

	"github.com/custor/portal-api/internal/models"
	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *GormFileRepository) FindByID(ctx context.Context, id uint64) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).Preload("Uploader").First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindCurrentByName picks the oldest current file carrying the name when
// several projects share it.
func (r *GormFileRepository) FindCurrentByName(ctx context.Context, name string) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_current = ?", name, true).
		Order("id ASC").
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *GormFileRepository) ListByProject(ctx context.Context, projectID uint64) ([]models.File, error) {
	var files []models.File
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("project_id = ? AND is_current = ?", projectID, true).
		Order("name ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *GormFileRepository) MaxVersion(ctx context.Context, projectID uint64, name string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Model(&models.File{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	return version, err
}

func (r *GormFileRepository) ClearCurrent(ctx context.Context, projectID uint64, name string) error {
	return r.db.WithContext(ctx).Model(&models.File{}).
		Where("project_id = ? AND name = ? AND is_current = ?", projectID, name, true).
		Update("is_current", false).Error
}
