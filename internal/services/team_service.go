package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAlreadyTeamMember  = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrUserNotInAnyTeam   = errors.New("user is not assigned to any team")
	ErrMentorNotFound     = errors.New("mentor not found")
	ErrNotMentor          = errors.New("user is not a mentor")
)

// TeamService handles teams and their soft-deleted memberships.
type TeamService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(store repository.Store, logger *zap.Logger) *TeamService {
	return &TeamService{store: store, logger: logger}
}

// CreateTeam creates an active team.
func (s *TeamService) CreateTeam(ctx context.Context, name string, description *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("Team name is required")
	}
	if err := checkTeamLengths(name, description); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.store.Teams().Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.Info("team created", zap.Uint64("team_id", team.ID))
	return team, nil
}

// ListTeams lists active teams with their active members.
func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.store.Teams().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam returns an active team with its active members.
func (s *TeamService) GetTeam(ctx context.Context, id uint64) (*models.Team, error) {
	team, err := s.store.Teams().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// UpdateTeamInput carries optional changes. A nil field is left as is.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

func (s *TeamService) UpdateTeam(ctx context.Context, id uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalidInput("Team name cannot be empty")
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = input.Description
	}
	if err := checkTeamLengths(team.Name, team.Description); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	team.UpdatedAt = &now

	if err := s.store.Teams().Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam soft-deletes a team. Memberships are kept for history.
func (s *TeamService) DeleteTeam(ctx context.Context, id uint64) error {
	if err := s.store.Teams().Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	s.logger.Info("team deactivated", zap.Uint64("team_id", id))
	return nil
}

// MembershipResult describes a membership change.
type MembershipResult struct {
	Team        *models.Team
	User        *models.User
	Reactivated bool
}

// AddMember adds userID to the team, reviving a soft-deleted membership
// instead of inserting a second row. A missing team is reported before a
// missing user.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID uint64) (*MembershipResult, error) {
	return s.addMember(ctx, teamID, userID, false)
}

// AssignUser is AddMember for the assign-user route, which reports a missing
// user before a missing team.
func (s *TeamService) AssignUser(ctx context.Context, userID, teamID uint64) (*MembershipResult, error) {
	return s.addMember(ctx, teamID, userID, true)
}

func (s *TeamService) addMember(ctx context.Context, teamID, userID uint64, userFirst bool) (*MembershipResult, error) {
	var result MembershipResult

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		findTeam := func() (*models.Team, error) {
			team, err := tx.Teams().FindByID(ctx, teamID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrTeamNotFound
				}
				return nil, fmt.Errorf("failed to find team: %w", err)
			}
			return team, nil
		}
		findUser := func() (*models.User, error) {
			user, err := tx.Users().FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, fmt.Errorf("failed to find user: %w", err)
			}
			return user, nil
		}

		var team *models.Team
		var user *models.User
		var err error
		if userFirst {
			if user, err = findUser(); err != nil {
				return err
			}
			if team, err = findTeam(); err != nil {
				return err
			}
		} else {
			if team, err = findTeam(); err != nil {
				return err
			}
			if user, err = findUser(); err != nil {
				return err
			}
		}

		result.Team = team
		result.User = user
		now := time.Now().UTC()

		existing, err := tx.Teams().FindMember(ctx, teamID, userID)
		switch {
		case err == nil && existing.IsActive:
			return ErrAlreadyTeamMember
		case err == nil:
			result.Reactivated = true
			return tx.Teams().ReactivateMember(ctx, teamID, userID, now)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to find membership: %w", err)
		}

		member := &models.TeamMember{
			TeamID:   teamID,
			UserID:   userID,
			JoinedAt: now,
			IsActive: true,
		}
		if err := tx.Teams().AddMember(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyTeamMember
			}
			return fmt.Errorf("failed to add member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team member added",
		zap.Uint64("team_id", teamID),
		zap.Uint64("user_id", userID),
		zap.Bool("reactivated", result.Reactivated),
	)
	return &result, nil
}

// RemoveMember soft-deletes the membership of userID in teamID.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Teams().FindMember(ctx, teamID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamMemberNotFound
			}
			return fmt.Errorf("failed to find membership: %w", err)
		}
		if err := tx.Teams().DeactivateMember(ctx, teamID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

// RemoveUserFromTeam deactivates the first active membership of userID,
// whichever team it is in.
func (s *TeamService) RemoveUserFromTeam(ctx context.Context, userID uint64) (*models.TeamMember, error) {
	var removed *models.TeamMember
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		member, err := tx.Teams().FindActiveMembershipByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotInAnyTeam
			}
			return fmt.Errorf("failed to find membership: %w", err)
		}
		if err := tx.Teams().DeactivateMember(ctx, member.TeamID, member.UserID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		member.IsActive = false
		removed = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ListUnassignedUsers lists non-admin users with no active membership.
func (s *TeamService) ListUnassignedUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().ListUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned users: %w", err)
	}
	return users, nil
}

// MentorTeam is a team a mentor belongs to with its active intern count.
type MentorTeam struct {
	Team        models.Team
	InternCount int
}

// ListMentorTeams lists the active teams in which mentorID is an active member.
func (s *TeamService) ListMentorTeams(ctx context.Context, mentorID uint64) ([]MentorTeam, error) {
	mentor, err := s.store.Users().FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to find mentor: %w", err)
	}
	if mentor.Role.Name != constants.RoleMentor {
		return nil, ErrNotMentor
	}

	teams, err := s.store.Teams().ListByActiveMember(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor teams: %w", err)
	}

	result := make([]MentorTeam, 0, len(teams))
	for _, team := range teams {
		interns := 0
		for _, member := range team.Members {
			if member.User.Role.Name == constants.RoleIntern {
				interns++
			}
		}
		result = append(result, MentorTeam{Team: team, InternCount: interns})
	}
	return result, nil
}

func checkTeamLengths(name string, description *string) error {
	if tooLong(name, models.TeamNameSize) {
		return invalidInput(fmt.Sprintf("Team name must be at most %d characters", models.TeamNameSize))
	}
	if description != nil && tooLong(*description, models.TeamDescriptionSize) {
		return invalidInput(fmt.Sprintf("Description must be at most %d characters", models.TeamDescriptionSize))
	}
	return nil
}
