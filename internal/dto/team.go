package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
)

// TeamSummaryDTO is the team-management listing shape.
type TeamSummaryDTO struct {
	TeamKey     uint64          `json:"teamKey"`
	TeamName    string          `json:"teamName"`
	Description *string         `json:"description"`
	MemberCount int             `json:"memberCount"`
	Members     []UserDetailDTO `json:"members"`
}

// CreatedTeamDTO is returned by the team-management create endpoint.
type CreatedTeamDTO struct {
	TeamKey     uint64  `json:"teamKey"`
	TeamName    string  `json:"teamName"`
	Description *string `json:"description"`
}

// TeamMemberDTO represents a member in a team
type TeamMemberDTO struct {
	UserKey   uint64    `json:"userKey"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// TeamDTO is the /teams resource shape.
type TeamDTO struct {
	TeamKey     uint64          `json:"teamKey"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
	MemberCount int             `json:"memberCount"`
	Members     []TeamMemberDTO `json:"members"`
}

// MentorTeamDTO counts only the interns of the team.
type MentorTeamDTO struct {
	TeamKey     uint64  `json:"teamKey"`
	TeamName    string  `json:"teamName"`
	Description *string `json:"description"`
	MemberCount int     `json:"memberCount"`
}

type AssignUserResponse struct {
	Message  string `json:"message"`
	UserKey  uint64 `json:"userKey"`
	Email    string `json:"email"`
	TeamName string `json:"teamName"`
}

type RemoveUserResponse struct {
	Message string `json:"message"`
	UserKey uint64 `json:"userKey"`
}

// ToTeamSummaryDTO expects only active members to be loaded.
func ToTeamSummaryDTO(team models.Team) TeamSummaryDTO {
	members := make([]UserDetailDTO, len(team.Members))
	for i, m := range team.Members {
		members[i] = ToUserDetailDTO(m.User)
	}
	return TeamSummaryDTO{
		TeamKey:     team.ID,
		TeamName:    team.Name,
		Description: team.Description,
		MemberCount: len(team.Members),
		Members:     members,
	}
}

func ToCreatedTeamDTO(team models.Team) CreatedTeamDTO {
	return CreatedTeamDTO{TeamKey: team.ID, TeamName: team.Name, Description: team.Description}
}

// ToTeamDTO expects only active members to be loaded.
func ToTeamDTO(team models.Team) TeamDTO {
	members := make([]TeamMemberDTO, len(team.Members))
	for i, m := range team.Members {
		members[i] = TeamMemberDTO{
			UserKey:   m.UserID,
			Email:     m.User.Email,
			FirstName: m.User.FirstName,
			LastName:  m.User.LastName,
			JoinedAt:  m.JoinedAt,
		}
	}
	return TeamDTO{
		TeamKey:     team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
		MemberCount: len(team.Members),
		Members:     members,
	}
}

func ToMentorTeamDTO(team models.Team, internCount int) MentorTeamDTO {
	return MentorTeamDTO{
		TeamKey:     team.ID,
		TeamName:    team.Name,
		Description: team.Description,
		MemberCount: internCount,
	}
}
