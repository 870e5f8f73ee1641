package repository

import (
	"context"
	"time"

	"github.com/custor/portal-api/internal/database"
	"github.com/custor/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

// withActiveMembers preloads active memberships down to each member's role.
func withActiveMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", "is_active = ?", true).
		Preload("Members.User").
		Preload("Members.User.Role")
}

// FindByID finds an active team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).
		Scopes(withActiveMembers, database.Active).
		First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListActive lists active teams
func (r *GormTeamRepository) ListActive(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Scopes(withActiveMembers, database.Active).
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// ListByActiveMember lists active teams where the user is an active member
func (r *GormTeamRepository) ListByActiveMember(ctx context.Context, userID uint64) ([]models.Team, error) {
	var teams []models.Team

	memberOf := r.db.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ? AND is_active = ?", userID, true)

	if err := r.db.WithContext(ctx).
		Scopes(withActiveMembers, database.Active).
		Where("id IN (?)", memberOf).
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Update saves name and description
func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Model(team).
		Select("name", "description", "updated_at").
		Updates(team).Error
}

// Deactivate soft-deletes a team
func (r *GormTeamRepository) Deactivate(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveMembershipByUser finds the user's first active membership
func (r *GormTeamRepository) FindActiveMembershipByUser(ctx context.Context, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("team_id ASC").
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// ReactivateMember turns a soft-deleted membership back on
func (r *GormTeamRepository) ReactivateMember(ctx context.Context, teamID, userID uint64, joinedAt time.Time) error {
	return r.setMemberState(ctx, teamID, userID, map[string]interface{}{
		"is_active": true,
		"joined_at": joinedAt,
	})
}

// DeactivateMember soft-deletes a membership
func (r *GormTeamRepository) DeactivateMember(ctx context.Context, teamID, userID uint64) error {
	return r.setMemberState(ctx, teamID, userID, map[string]interface{}{
		"is_active": false,
	})
}

// setMemberState does not report missing rows: MySQL counts changed rows,
// not matched ones, so callers look the membership up first.
func (r *GormTeamRepository) setMemberState(ctx context.Context, teamID, userID uint64, values map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Updates(values).Error
}
