package repository

import (
	"context"

	"github.com/custor/portal-api/internal/models"
	"gorm.io/gorm"
)

type GormCommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

// FindByOwner returns gorm.ErrRecordNotFound when the comment exists under a
// different owner.
func (r *GormCommentRepository) FindByOwner(ctx context.Context, id uint64, kind models.CommentOwnerKind, ownerID uint64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND owner_kind = ? AND owner_id = ?", id, kind, ownerID).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByOwner(ctx context.Context, kind models.CommentOwnerKind, ownerID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Role").
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("timestamp ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Model(comment).
		Select("text", "mentions", "target_user_id", "timestamp").
		Updates(comment).Error
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
