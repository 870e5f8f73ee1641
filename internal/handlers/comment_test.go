package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/dto"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type CommentHandlerTestSuite struct {
	suite.Suite
	env     handlerTestEnv
	handler *CommentHandler
	author  *models.User
	intern  *models.User
	file    *models.File
	task    *models.Task
}

func (s *CommentHandlerTestSuite) SetupTest() {
	s.env = setupHandlerTestEnv(s.T())
	svc := services.NewCommentService(s.env.store, s.env.notifications, s.env.metrics, s.env.logger)
	s.handler = NewCommentHandler(svc, s.env.logger)

	s.author = testutil.CreateUser(s.T(), s.env.db, "mia@custor.test", "Mia", "Mentor", constants.RoleMentor)
	s.intern = testutil.CreateIntern(s.T(), s.env.db, "ivy@custor.test", "Ivy", "Intern")
	project := testutil.CreateProject(s.T(), s.env.db, "Portal", s.author.ID)
	s.file = testutil.CreateFile(s.T(), s.env.db, "design.pdf", project.ID, s.author.ID)
	s.task = testutil.CreateTask(s.T(), s.env.db, "Review design", s.author.ID, &project.ID)
}

func TestCommentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CommentHandlerTestSuite))
}

func (s *CommentHandlerTestSuite) fileParams() gin.Params {
	return param("fileId", fmt.Sprint(s.file.ID))
}

func (s *CommentHandlerTestSuite) unread(userID uint64) int64 {
	count, err := s.env.notifications.UnreadCount(context.Background(), userID)
	s.Require().NoError(err)
	return count
}

func (s *CommentHandlerTestSuite) TestAnonymousCommentUsesBodyAuthor() {
	w := serve(s.T(), s.handler.CreateFileComment, testRequest{
		method: http.MethodPost,
		url:    "/api/files/1/comments",
		params: s.fileParams(),
		body: map[string]interface{}{
			"content":  "Please check page 2",
			"mentions": []string{"@ivy@custor.test", "nobody"},
			"userId":   s.author.ID,
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var comment dto.CommentDTO
	decodeJSON(s.T(), w, &comment)
	s.Equal(s.author.ID, comment.UserID)
	s.Equal("mia@custor.test", comment.Author)
	s.Require().NotNil(comment.Mentions)
	s.JSONEq(`["@ivy@custor.test","nobody"]`, *comment.Mentions)
	s.Nil(comment.User)

	s.Equal(int64(1), s.unread(s.intern.ID))
}

func (s *CommentHandlerTestSuite) TestTokenSubjectOverridesBodyUser() {
	w := serve(s.T(), s.handler.CreateTaskComment, testRequest{
		method: http.MethodPost,
		url:    "/api/tasks/1/comments",
		params: param("taskId", fmt.Sprint(s.task.ID)),
		body:   map[string]interface{}{"content": "On it", "userId": s.author.ID},
		userID: s.intern.ID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var comment dto.CommentDTO
	decodeJSON(s.T(), w, &comment)
	s.Equal(s.intern.ID, comment.UserID)

	w = serve(s.T(), s.handler.ListTaskComments, testRequest{
		method: http.MethodGet,
		url:    "/api/tasks/1/comments",
		params: param("taskId", fmt.Sprint(s.task.ID)),
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var comments []dto.CommentDTO
	decodeJSON(s.T(), w, &comments)
	s.Require().Len(comments, 1)
	s.Require().NotNil(comments[0].User)
	s.Equal(constants.RoleIntern, comments[0].User.Role.RoleName)
}

func (s *CommentHandlerTestSuite) TestCreateErrors() {
	w := serve(s.T(), s.handler.CreateFileComment, testRequest{
		method: http.MethodPost,
		url:    "/api/files/999/comments",
		params: param("fileId", "999"),
		body:   map[string]interface{}{"content": "hello", "userId": s.author.ID},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("File with ID 999 not found.", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.CreateFileComment, testRequest{
		method: http.MethodPost,
		url:    "/api/files/1/comments",
		params: s.fileParams(),
		body:   map[string]interface{}{"content": "hello", "userId": 999},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("User with ID 999 not found.", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.CreateFileComment, testRequest{
		method: http.MethodPost,
		url:    "/api/files/1/comments",
		params: s.fileParams(),
		body:   map[string]interface{}{"content": "  ", "userId": s.author.ID},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Comment cannot be empty", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.CreateTaskComment, testRequest{
		method: http.MethodPost,
		url:    "/api/tasks/999/comments",
		params: param("taskId", "999"),
		body:   map[string]interface{}{"content": "hello", "userId": s.author.ID},
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Task with ID 999 not found.", decodeError(s.T(), w).Message)
}

func (s *CommentHandlerTestSuite) TestByName() {
	name := url.PathEscape("design.pdf")
	w := serve(s.T(), s.handler.CreateFileCommentByName, testRequest{
		method: http.MethodPost,
		url:    "/api/file-comments/by-name/" + name,
		params: param("fileName", "design.pdf"),
		body:   map[string]interface{}{"content": "Looks good", "userId": s.author.ID, "mentions": []string{"Ivy Intern"}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(int64(1), s.unread(s.intern.ID))

	w = serve(s.T(), s.handler.ListFileCommentsByName, testRequest{
		method: http.MethodGet,
		url:    "/api/file-comments/by-name/" + name,
		params: param("fileName", "design.pdf"),
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var comments []dto.CommentDTO
	decodeJSON(s.T(), w, &comments)
	s.Len(comments, 1)

	w = serve(s.T(), s.handler.ListFileCommentsByName, testRequest{
		method: http.MethodGet,
		url:    "/api/file-comments/by-name/missing.txt",
		params: param("fileName", "missing.txt"),
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("File with name 'missing.txt' not found.", decodeError(s.T(), w).Message)
}

func (s *CommentHandlerTestSuite) TestUpdateAndDelete() {
	comment := &models.Comment{
		OwnerKind: models.CommentOwnerFile,
		OwnerID:   s.file.ID,
		Text:      "first draft",
		UserID:    s.author.ID,
	}
	s.Require().NoError(s.env.db.Create(comment).Error)
	params := gin.Params{{Key: "fileId", Value: fmt.Sprint(s.file.ID)}, {Key: "commentId", Value: fmt.Sprint(comment.ID)}}

	w := serve(s.T(), s.handler.UpdateFileComment, testRequest{
		method: http.MethodPut,
		url:    "/api/files/1/comments/1",
		params: params,
		body:   map[string]interface{}{"content": "final", "mentions": []string{"ivy@custor.test"}},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.CommentDTO
	decodeJSON(s.T(), w, &updated)
	s.Equal("final", updated.Content)
	s.Equal(int64(1), s.unread(s.intern.ID))

	w = serve(s.T(), s.handler.UpdateFileComment, testRequest{
		method: http.MethodPut,
		url:    "/api/files/1/comments/1",
		params: params,
		body:   map[string]interface{}{"content": ""},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Comment text cannot be empty.", decodeError(s.T(), w).Message)

	w = serve(s.T(), s.handler.DeleteFileComment, testRequest{method: http.MethodDelete, url: "/api/files/1/comments/1", params: params})
	s.Equal(http.StatusNoContent, w.Code)

	w = serve(s.T(), s.handler.DeleteFileComment, testRequest{method: http.MethodDelete, url: "/api/files/1/comments/1", params: params})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(fmt.Sprintf("Comment with ID %d for File %d not found.", comment.ID, s.file.ID), decodeError(s.T(), w).Message)
}
