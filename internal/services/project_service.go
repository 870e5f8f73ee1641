package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleEmpty    = errors.New("title cannot be empty")
)

// ProjectService handles projects and the tasks inside them.
type ProjectService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(store repository.Store, logger *zap.Logger) *ProjectService {
	return &ProjectService{store: store, logger: logger}
}

func (s *ProjectService) CreateProject(ctx context.Context, name, description string, creatorID uint64) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("Project name is required")
	}

	creator, err := s.store.Users().FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		CreatorID:   creator.ID,
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	project.Creator = *creator

	s.logger.Info("project created", zap.Uint64("project_id", project.ID), zap.Uint64("creator_id", creator.ID))
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.store.Projects().List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Deadline    *time.Time
	ProjectID   uint64
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
}

// CreateTask creates a task inside a project. Empty status and priority
// take their defaults.
func (s *ProjectService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := checkTitleLength(strings.TrimSpace(input.Title)); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityLow
	}
	if err := validateTaskEnums(input.Status, input.Priority); err != nil {
		return nil, err
	}

	if _, err := s.GetProject(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	projectID := input.ProjectID
	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		ProjectID:   &projectID,
		CreatorID:   input.CreatorID,
	}
	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.store.Tasks().FindByID(ctx, task.ID, "Creator", "Project")
}

// ListTasks lists the tasks of a project, newest first.
func (s *ProjectService) ListTasks(ctx context.Context, projectID uint64) ([]models.Task, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task with related data
func (s *ProjectService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID, "Creator", "Project", "Assignees", "Assignees.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTask applies the non-nil fields of input. Any status or priority may
// follow any other.
func (s *ProjectService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		if err := checkTitleLength(strings.TrimSpace(*input.Title)); err != nil {
			return nil, err
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}

	if err := validateTaskEnums(task.Status, task.Priority); err != nil {
		return nil, err
	}

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(ctx, taskID)
}

func checkTitleLength(title string) error {
	if tooLong(title, models.TaskTitleSize) {
		return invalidInput(fmt.Sprintf("Title must be at most %d characters", models.TaskTitleSize))
	}
	return nil
}

func validateTaskEnums(status models.TaskStatus, priority models.TaskPriority) error {
	if !status.Valid() {
		return invalidInput(fmt.Sprintf("Invalid status '%s'", status))
	}
	if !priority.Valid() {
		return invalidInput(fmt.Sprintf("Invalid priority '%s'", priority))
	}
	return nil
}
