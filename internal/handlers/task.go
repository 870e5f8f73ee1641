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

// TaskHandler serves task assignment.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

func (h *TaskHandler) ListAssignees(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}

	assignees, err := h.taskService.ListAssignees(c.Request.Context(), taskID)
	if err != nil {
		h.respondTaskError(c, err, taskID, 0)
		return
	}
	c.JSON(http.StatusOK, dto.ToAssigneeDTOs(assignees))
}

// AssignUser assigns the user in the body to the task.
func (h *TaskHandler) AssignUser(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}

	type TaskAssigneeRequest struct {
		UserKey uint64 `json:"userKey" binding:"required"`
	}

	var req TaskAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	assignee, err := h.taskService.AssignUser(c.Request.Context(), taskID, req.UserKey)
	if err != nil {
		h.respondTaskError(c, err, taskID, req.UserKey)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAssigneeDTO(*assignee))
}

func (h *TaskHandler) UnassignUser(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user ID")
	if !ok {
		return
	}

	if err := h.taskService.UnassignUser(c.Request.Context(), taskID, userID); err != nil {
		h.respondTaskError(c, err, taskID, userID)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error, taskID, userID uint64) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, fmt.Sprintf("Task with ID %d not found.", taskID))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, fmt.Sprintf("User with ID %d not found.", userID))
	case errors.Is(err, services.ErrAlreadyAssigned):
		apierrors.Conflict(c, fmt.Sprintf("User with ID %d is already assigned to Task with ID %d.", userID, taskID))
	case errors.Is(err, services.ErrNotAssigned):
		apierrors.NotFound(c, fmt.Sprintf("User with ID %d is not assigned to Task with ID %d.", userID, taskID))
	default:
		respondInternal(c, h.logger, err)
	}
}
