package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProjectHandler serves projects and the tasks inside them.
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"max=200"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req.Name, req.Description, userID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns a page of projects, newest first.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), params)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   dto.ToProjectDTOs(projects),
		Pagination: params.Response(total),
	})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId", "project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateTask creates a task in the project. The caller becomes its creator.
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "projectId", "project ID")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		Deadline    *time.Time          `json:"deadline"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	task, err := h.projectService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		ProjectID:   projectID,
		CreatorID:   userID,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

func (h *ProjectHandler) ListTasks(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId", "project ID")
	if !ok {
		return
	}

	tasks, err := h.projectService.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

func (h *ProjectHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}

	task, err := h.projectService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. clearDeadline removes the deadline.
func (h *ProjectHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task ID")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string              `json:"title"`
		Description   *string              `json:"description"`
		Status        *models.TaskStatus   `json:"status"`
		Priority      *models.TaskPriority `json:"priority"`
		Deadline      *time.Time           `json:"deadline"`
		ClearDeadline bool                 `json:"clearDeadline"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	task, err := h.projectService.UpdateTask(c.Request.Context(), taskID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title is required")
	case errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequest(c, "Title cannot be empty")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		respondInternal(c, h.logger, err)
	}
}
