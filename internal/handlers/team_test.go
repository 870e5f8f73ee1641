package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/dto"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type TeamHandlerTestSuite struct {
	suite.Suite
	env     handlerTestEnv
	handler *TeamHandler
}

func (s *TeamHandlerTestSuite) SetupTest() {
	s.env = setupHandlerTestEnv(s.T())
	s.handler = NewTeamHandler(services.NewTeamService(s.env.store, s.env.logger), s.env.logger)
}

func TestTeamHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TeamHandlerTestSuite))
}

func (s *TeamHandlerTestSuite) TestCreateAndListSummaries() {
	w := serve(s.T(), s.handler.CreateTeamSummary, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/teams",
		body:   `{"teamName":"Alpha"}`,
		userID: 1,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.JSONEq(`{"teamKey":1,"teamName":"Alpha","description":null}`, w.Body.String())

	w = serve(s.T(), s.handler.ListTeamSummaries, testRequest{method: http.MethodGet, url: "/api/team-management/teams", userID: 1})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[{"teamKey":1,"teamName":"Alpha","description":null,"memberCount":0,"members":[]}]`, w.Body.String())
}

func (s *TeamHandlerTestSuite) TestCreateSummaryRequiresName() {
	w := serve(s.T(), s.handler.CreateTeamSummary, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/teams",
		body:   `{"teamName":"  "}`,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Team name is required", decodeError(s.T(), w).Message)
}

func (s *TeamHandlerTestSuite) TestAssignAndRemoveUser() {
	team := testutil.CreateTeam(s.T(), s.env.db, "Alpha")
	intern := testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")
	body := map[string]uint64{"userKey": intern.ID, "teamKey": team.ID}

	w := serve(s.T(), s.handler.AssignUser, testRequest{method: http.MethodPost, url: "/api/team-management/assign-user", body: body})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var assigned dto.AssignUserResponse
	decodeJSON(s.T(), w, &assigned)
	s.Equal(dto.AssignUserResponse{
		Message:  "User assigned to team successfully",
		UserKey:  intern.ID,
		Email:    "ivy@custor.test",
		TeamName: "Alpha",
	}, assigned)

	w = serve(s.T(), s.handler.AssignUser, testRequest{method: http.MethodPost, url: "/api/team-management/assign-user", body: body})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("User is already assigned to this team", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.RemoveUser, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/remove-user",
		body:   map[string]uint64{"userKey": intern.ID},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(fmt.Sprintf(`{"message":"User removed from team successfully","userKey":%d}`, intern.ID), w.Body.String())

	w = serve(s.T(), s.handler.RemoveUser, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/remove-user",
		body:   map[string]uint64{"userKey": intern.ID},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("User is not assigned to any team", decodeError(s.T(), w).Message)
}

func (s *TeamHandlerTestSuite) TestAssignUserMissingEntities() {
	team := testutil.CreateTeam(s.T(), s.env.db, "Alpha")
	intern := testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")

	w := serve(s.T(), s.handler.AssignUser, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/assign-user",
		body:   map[string]uint64{"userKey": 999, "teamKey": team.ID},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("User not found", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.AssignUser, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/assign-user",
		body:   map[string]uint64{"userKey": intern.ID, "teamKey": 999},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Team not found", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.AssignUser, testRequest{
		method: http.MethodPost,
		url:    "/api/team-management/assign-user",
		body:   map[string]uint64{"userKey": 999, "teamKey": 998},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("User not found", decodeError(s.T(), w).Message)
}

func (s *TeamHandlerTestSuite) TestMentorTeams() {
	team := testutil.CreateTeam(s.T(), s.env.db, "Alpha")
	mentor := testutil.CreateUser(s.T(), s.env.db, "mia@custor.test", "Mia", "Mentor", constants.RoleMentor)
	intern := testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")
	for _, id := range []uint64{mentor.ID, intern.ID} {
		s.Require().NoError(s.env.db.Create(&models.TeamMember{TeamID: team.ID, UserID: id, IsActive: true}).Error)
	}

	w := serve(s.T(), s.handler.ListMentorTeams, testRequest{
		method: http.MethodGet,
		params: param("mentorId", fmt.Sprint(mentor.ID)),
		url:    "/api/team-management/mentor-teams",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(fmt.Sprintf(`[{"teamKey":%d,"teamName":"Alpha","description":null,"memberCount":1}]`, team.ID), w.Body.String())

	w = serve(s.T(), s.handler.ListMentorTeams, testRequest{
		method: http.MethodGet,
		params: param("mentorId", fmt.Sprint(intern.ID)),
		url:    "/api/team-management/mentor-teams",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("User is not a mentor", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.ListMentorTeams, testRequest{
		method: http.MethodGet,
		params: param("mentorId", "999"),
		url:    "/api/team-management/mentor-teams",
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Mentor not found", decodeError(s.T(), w).Message)
}

func (s *TeamHandlerTestSuite) TestUnassignedUsers() {
	testutil.CreateUser(s.T(), s.env.db, "admin@custor.test", "Ada", "Admin", constants.RoleAdmin)
	intern := testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")

	w := serve(s.T(), s.handler.ListUnassignedUsers, testRequest{method: http.MethodGet, url: "/api/team-management/unassigned-users"})
	s.Require().Equal(http.StatusOK, w.Code)

	var users []dto.UserDetailDTO
	decodeJSON(s.T(), w, &users)
	s.Require().Len(users, 1)
	s.Equal(intern.ID, users[0].UserKey)
}

func (s *TeamHandlerTestSuite) TestTeamsResource() {
	w := serve(s.T(), s.handler.CreateTeam, testRequest{
		method: http.MethodPost,
		url:    "/api/teams",
		body:   map[string]string{"name": "Beta", "description": "Second team"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.TeamDTO
	decodeJSON(s.T(), w, &created)
	s.Equal("Beta", created.Name)
	s.Equal(fmt.Sprintf("/api/teams/%d", created.TeamKey), w.Header().Get("Location"))
	teamID := fmt.Sprint(created.TeamKey)

	w = serve(s.T(), s.handler.UpdateTeam, testRequest{
		method: http.MethodPut,
		url:    "/api/teams/" + teamID,
		params: param("teamId", teamID),
		body:   map[string]string{"name": "Gamma"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TeamDTO
	decodeJSON(s.T(), w, &updated)
	s.Equal("Gamma", updated.Name)
	s.Require().NotNil(updated.Description)
	s.Equal("Second team", *updated.Description)
	s.NotNil(updated.UpdatedAt)

	w = serve(s.T(), s.handler.DeleteTeam, testRequest{method: http.MethodDelete, url: "/api/teams/" + teamID, params: param("teamId", teamID)})
	s.Equal(http.StatusNoContent, w.Code)

	w = serve(s.T(), s.handler.GetTeam, testRequest{method: http.MethodGet, url: "/api/teams/" + teamID, params: param("teamId", teamID)})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(fmt.Sprintf("Team with ID %s not found.", teamID), decodeError(s.T(), w).Message)
}

func (s *TeamHandlerTestSuite) TestCreateTeamValidation() {
	w := serve(s.T(), s.handler.CreateTeam, testRequest{method: http.MethodPost, url: "/api/teams", body: map[string]string{"description": "no name"}})
	s.Equal(http.StatusBadRequest, w.Code)

	apiErr := decodeError(s.T(), w)
	s.Equal("Invalid request body", apiErr.Message)
	s.Equal(map[string]interface{}{"Name": "required"}, apiErr.Details)
}

func (s *TeamHandlerTestSuite) TestTeamMembers() {
	team := testutil.CreateTeam(s.T(), s.env.db, "Alpha")
	intern := testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")
	teamID := fmt.Sprint(team.ID)

	add := func(userKey uint64) (int, string) {
		w := serve(s.T(), s.handler.AddMember, testRequest{
			method: http.MethodPost,
			url:    "/api/teams/" + teamID + "/members",
			params: param("teamId", teamID),
			body:   map[string]uint64{"userKey": userKey},
		})
		if w.Code == http.StatusOK {
			var msg dto.MessageResponse
			decodeJSON(s.T(), w, &msg)
			return w.Code, msg.Message
		}
		return w.Code, decodeError(s.T(), w).Message
	}

	code, msg := add(intern.ID)
	s.Equal(http.StatusOK, code)
	s.Equal("Team member added successfully.", msg)

	code, msg = add(intern.ID)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("User is already a member of this team.", msg)

	code, msg = add(999)
	s.Equal(http.StatusNotFound, code)
	s.Equal("User with ID 999 not found.", msg)

	userID := fmt.Sprint(intern.ID)
	w := serve(s.T(), s.handler.RemoveMember, testRequest{
		method: http.MethodDelete,
		url:    "/api/teams/" + teamID + "/members/" + userID,
		params: gin.Params{{Key: "teamId", Value: teamID}, {Key: "userId", Value: userID}},
	})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Team member removed successfully."}`, w.Body.String())

	w = serve(s.T(), s.handler.RemoveMember, testRequest{
		method: http.MethodDelete,
		url:    "/api/teams/" + teamID + "/members/999",
		params: gin.Params{{Key: "teamId", Value: teamID}, {Key: "userId", Value: "999"}},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Team member not found.", decodeError(s.T(), w).Message)

	code, _ = add(intern.ID)
	s.Equal(http.StatusOK, code, "re-adding revives the membership")

	var rows int64
	s.Require().NoError(s.env.db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, intern.ID).Count(&rows).Error)
	s.Equal(int64(1), rows)
}
