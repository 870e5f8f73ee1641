package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatorID   uint64         `json:"creatorId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time     `json:"updatedAt"`
	Creator     *UserDetailDTO `json:"creator,omitempty"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ProjectRefDTO is the project summary embedded in a task.
type ProjectRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// AssigneeDTO represents a task assignment in API responses
type AssigneeDTO struct {
	TaskKey    uint64         `json:"taskKey"`
	UserKey    uint64         `json:"userKey"`
	AssignedAt time.Time      `json:"assignedAt"`
	User       *UserDetailDTO `json:"user,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
	ProjectID   *uint64             `json:"projectId"`
	CreatorID   uint64              `json:"creatorId"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Creator     *UserDetailDTO      `json:"creator,omitempty"`
	Project     *ProjectRefDTO      `json:"project,omitempty"`
	Assignees   []AssigneeDTO       `json:"assignees,omitempty"`
}

// Conversion functions

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatorID:   project.CreatorID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.Creator.ID != 0 {
		creator := ToUserDetailDTO(project.Creator)
		dto.Creator = &creator
	}
	return dto
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}

// ToAssigneeDTO converts an assignment, including the user when preloaded.
func ToAssigneeDTO(assignee models.TaskAssignee) AssigneeDTO {
	dto := AssigneeDTO{
		TaskKey:    assignee.TaskID,
		UserKey:    assignee.UserID,
		AssignedAt: assignee.AssignedAt,
	}
	if assignee.User.ID != 0 {
		user := ToUserDetailDTO(assignee.User)
		dto.User = &user
	}
	return dto
}

func ToAssigneeDTOs(assignees []models.TaskAssignee) []AssigneeDTO {
	out := make([]AssigneeDTO, len(assignees))
	for i, a := range assignees {
		out[i] = ToAssigneeDTO(a)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		ProjectID:   task.ProjectID,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDetailDTO(task.Creator)
		dto.Creator = &creator
	}

	if task.Project != nil {
		dto.Project = &ProjectRefDTO{ID: task.Project.ID, Name: task.Project.Name}
	}

	// Include assignees if preloaded
	if len(task.Assignees) > 0 {
		dto.Assignees = ToAssigneeDTOs(task.Assignees)
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
