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

// CommentRequest is the body of every comment create and update.
type CommentRequest struct {
	Content      string   `json:"content"`
	Mentions     []string `json:"mentions"`
	UserID       uint64   `json:"userId"`
	Author       string   `json:"author"`
	TargetUserID string   `json:"targetUserId"`
}

func (r CommentRequest) input(c *gin.Context) services.CommentInput {
	return services.CommentInput{
		Content:      r.Content,
		Mentions:     r.Mentions,
		UserID:       actingUserID(c, r.UserID),
		TargetUserID: r.TargetUserID,
	}
}

// CommentHandler serves comments on files and tasks. Routes accept anonymous
// callers; a bearer token, when present, decides the author.
type CommentHandler struct {
	commentService *services.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, logger: logger}
}

// commentTarget names the owner in 404 messages.
type commentTarget struct {
	missing string
	userID  uint64
}

func (h *CommentHandler) bindComment(c *gin.Context) (CommentRequest, bool) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return req, false
	}
	return req, true
}

func (h *CommentHandler) CreateFileComment(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId", "file ID")
	if !ok {
		return
	}
	req, ok := h.bindComment(c)
	if !ok {
		return
	}

	input := req.input(c)
	comment, err := h.commentService.CreateFileComment(c.Request.Context(), fileID, input)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{
			missing: fmt.Sprintf("File with ID %d not found.", fileID),
			userID:  input.UserID,
		})
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment, false))
}

func (h *CommentHandler) ListFileComments(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId", "file ID")
	if !ok {
		return
	}

	comments, err := h.commentService.ListFileComments(c.Request.Context(), fileID)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{missing: fmt.Sprintf("File with ID %d not found.", fileID)})
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

// CreateFileCommentByName comments on the current file carrying that name.
func (h *CommentHandler) CreateFileCommentByName(c *gin.Context) {
	fileName := c.Param("fileName")
	req, ok := h.bindComment(c)
	if !ok {
		return
	}

	input := req.input(c)
	comment, err := h.commentService.CreateFileCommentByName(c.Request.Context(), fileName, input)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{
			missing: fmt.Sprintf("File with name '%s' not found.", fileName),
			userID:  input.UserID,
		})
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment, false))
}

func (h *CommentHandler) ListFileCommentsByName(c *gin.Context) {
	fileName := c.Param("fileName")

	comments, err := h.commentService.ListFileCommentsByName(c.Request.Context(), fileName)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{missing: fmt.Sprintf("File with name '%s' not found.", fileName)})
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

func (h *CommentHandler) CreateTaskComment(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}
	req, ok := h.bindComment(c)
	if !ok {
		return
	}

	input := req.input(c)
	comment, err := h.commentService.CreateTaskComment(c.Request.Context(), taskID, input)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{
			missing: fmt.Sprintf("Task with ID %d not found.", taskID),
			userID:  input.UserID,
		})
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment, false))
}

func (h *CommentHandler) ListTaskComments(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}

	comments, err := h.commentService.ListTaskComments(c.Request.Context(), taskID)
	if err != nil {
		h.respondCommentError(c, err, commentTarget{missing: fmt.Sprintf("Task with ID %d not found.", taskID)})
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

// UpdateFileComment replaces the comment and notifies the new mention list.
func (h *CommentHandler) UpdateFileComment(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId", "file ID")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId", "comment ID")
	if !ok {
		return
	}
	req, ok := h.bindComment(c)
	if !ok {
		return
	}

	comment, err := h.commentService.UpdateFileComment(c.Request.Context(), fileID, commentID, req.input(c))
	if err != nil {
		h.respondCommentError(c, err, commentTarget{
			missing: fmt.Sprintf("Comment with ID %d for File %d not found.", commentID, fileID),
		})
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment, false))
}

func (h *CommentHandler) DeleteFileComment(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId", "file ID")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId", "comment ID")
	if !ok {
		return
	}

	if err := h.commentService.DeleteFileComment(c.Request.Context(), fileID, commentID); err != nil {
		h.respondCommentError(c, err, commentTarget{
			missing: fmt.Sprintf("Comment with ID %d for File %d not found.", commentID, fileID),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) respondCommentError(c *gin.Context, err error, target commentTarget) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrFileNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, target.missing)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, fmt.Sprintf("User with ID %d not found.", target.userID))
	default:
		respondInternal(c, h.logger, err)
	}
}
