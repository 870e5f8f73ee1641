package repository

import (
	"context"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").
		Where("email_normalized = ?", models.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByMention matches the lower-cased email or "first last" name.
func (r *GormUserRepository) FindByMention(ctx context.Context, mention string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email_normalized = ? OR LOWER("+r.fullNameExpr()+") = ?", mention, mention).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// fullNameExpr concatenates first and last name in the connected dialect.
// MySQL treats || as logical OR unless PIPES_AS_CONCAT is set.
func (r *GormUserRepository) fullNameExpr() string {
	if r.db.Dialector.Name() == "mysql" {
		return "CONCAT(first_name, ' ', last_name)"
	}
	return "first_name || ' ' || last_name"
}

// List returns a page of users ordered by ID
func (r *GormUserRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Role").
		Order("id ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListUnassigned returns non-admin users with no active membership
func (r *GormUserRepository) ListUnassigned(ctx context.Context) ([]models.User, error) {
	var users []models.User

	activeMembers := r.db.Model(&models.TeamMember{}).
		Select("user_id").
		Where("is_active = ?", true)
	adminRoles := r.db.Model(&models.Role{}).
		Select("id").
		Where("name = ?", constants.RoleAdmin)

	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("id NOT IN (?)", activeMembers).
		Where("role_id NOT IN (?)", adminRoles).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdatePassword overwrites the stored hash
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

// UpdateRole points the user at another role
func (r *GormUserRepository) UpdateRole(ctx context.Context, id, roleID uint64) error {
	return r.updateColumn(ctx, id, "role_id", roleID)
}

func (r *GormUserRepository) updateColumn(ctx context.Context, id uint64, column string, value interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update(column, value).Error
}
