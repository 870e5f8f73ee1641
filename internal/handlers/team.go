package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TeamHandler serves both the team-management routes and the /teams resource.
type TeamHandler struct {
	teamService *services.TeamService
	logger      *zap.Logger
}

func NewTeamHandler(teamService *services.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, logger: logger}
}

// ListTeamSummaries lists active teams with their active members.
func (h *TeamHandler) ListTeamSummaries(c *gin.Context) {
	teams, err := h.teamService.ListTeams(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}

	out := make([]dto.TeamSummaryDTO, len(teams))
	for i, team := range teams {
		out[i] = dto.ToTeamSummaryDTO(team)
	}
	c.JSON(http.StatusOK, out)
}

func (h *TeamHandler) CreateTeamSummary(c *gin.Context) {
	type CreateTeamRequest struct {
		TeamName    string  `json:"teamName"`
		Description *string `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), req.TeamName, req.Description)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCreatedTeamDTO(*team))
}

// AssignUser adds a user to a team by keys given in the body.
func (h *TeamHandler) AssignUser(c *gin.Context) {
	type AssignUserRequest struct {
		UserKey uint64 `json:"userKey" binding:"required"`
		TeamKey uint64 `json:"teamKey" binding:"required"`
	}

	var req AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	result, err := h.teamService.AssignUser(c.Request.Context(), req.UserKey, req.TeamKey)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyTeamMember):
			apierrors.BadRequest(c, "User is already assigned to this team")
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrTeamNotFound):
			apierrors.NotFound(c, "Team not found")
		default:
			h.respondTeamError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.AssignUserResponse{
		Message:  "User assigned to team successfully",
		UserKey:  result.User.ID,
		Email:    result.User.Email,
		TeamName: result.Team.Name,
	})
}

// RemoveUser deactivates the user's active membership, whichever team it is in.
func (h *TeamHandler) RemoveUser(c *gin.Context) {
	type RemoveUserRequest struct {
		UserKey uint64 `json:"userKey" binding:"required"`
	}

	var req RemoveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	if _, err := h.teamService.RemoveUserFromTeam(c.Request.Context(), req.UserKey); err != nil {
		h.respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RemoveUserResponse{
		Message: "User removed from team successfully",
		UserKey: req.UserKey,
	})
}

func (h *TeamHandler) ListUnassignedUsers(c *gin.Context) {
	users, err := h.teamService.ListUnassignedUsers(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailDTOs(users))
}

func (h *TeamHandler) ListMentorTeams(c *gin.Context) {
	mentorID, ok := parseIDParam(c, "mentorId", "mentor ID")
	if !ok {
		return
	}

	teams, err := h.teamService.ListMentorTeams(c.Request.Context(), mentorID)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}

	out := make([]dto.MentorTeamDTO, len(teams))
	for i, t := range teams {
		out[i] = dto.ToMentorTeamDTO(t.Team, t.InternCount)
	}
	c.JSON(http.StatusOK, out)
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}

	out := make([]dto.TeamDTO, len(teams))
	for i, team := range teams {
		out[i] = dto.ToTeamDTO(team)
	}
	c.JSON(http.StatusOK, out)
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "teamId", "team ID")
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		h.respondTeamResourceError(c, err, teamID)
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	type CreateTeamRequest struct {
		Name        string  `json:"name" binding:"required,max=100"`
		Description *string `json:"description" binding:"omitempty,max=500"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/teams/%d", team.ID))
	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// UpdateTeam changes the name or description. Absent fields are kept.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "teamId", "team ID")
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=100"`
		Description *string `json:"description" binding:"omitempty,max=500"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), teamID, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondTeamResourceError(c, err, teamID)
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "teamId", "team ID")
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), teamID); err != nil {
		h.respondTeamResourceError(c, err, teamID)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TeamHandler) AddMember(c *gin.Context) {
	teamID, ok := parseIDParam(c, "teamId", "team ID")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserKey uint64 `json:"userKey" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	if _, err := h.teamService.AddMember(c.Request.Context(), teamID, req.UserKey); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, fmt.Sprintf("User with ID %d not found.", req.UserKey))
			return
		}
		h.respondTeamResourceError(c, err, teamID)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Team member added successfully."})
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	teamID, ok := parseIDParam(c, "teamId", "team ID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user ID")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), teamID, userID); err != nil {
		h.respondTeamResourceError(c, err, teamID)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Team member removed successfully."})
}

// respondTeamResourceError words /teams failures around the team id.
func (h *TeamHandler) respondTeamResourceError(c *gin.Context, err error, teamID uint64) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, fmt.Sprintf("Team with ID %d not found.", teamID))
	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.BadRequest(c, "User is already a member of this team.")
	case errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, "Team member not found.")
	default:
		h.respondTeamError(c, err)
	}
}

func (h *TeamHandler) respondTeamError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, "Team not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUserNotInAnyTeam):
		apierrors.NotFound(c, "User is not assigned to any team")
	case errors.Is(err, services.ErrMentorNotFound):
		apierrors.NotFound(c, "Mentor not found")
	case errors.Is(err, services.ErrNotMentor):
		apierrors.BadRequest(c, "User is not a mentor")
	default:
		respondInternal(c, h.logger, err)
	}
}
