package repository

import (
	"context"

	"github.com/custor/portal-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject lists a project's tasks, newest first
func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("Project", "Creator", "Assignees").Save(task).Error
}

// FindAssignee finds a specific task assignee
func (r *GormTaskRepository) FindAssignee(ctx context.Context, taskID, userID uint64) (*models.TaskAssignee, error) {
	var assignee models.TaskAssignee
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&assignee).Error; err != nil {
		return nil, err
	}
	return &assignee, nil
}

// AddAssignee inserts the join row. A concurrent duplicate surfaces as
// gorm.ErrDuplicatedKey.
func (r *GormTaskRepository) AddAssignee(ctx context.Context, assignee *models.TaskAssignee) error {
	return r.db.WithContext(ctx).Create(assignee).Error
}

// RemoveAssignee deletes the join row
func (r *GormTaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAssignee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAssignees lists a task's assignees in assignment order
func (r *GormTaskRepository) ListAssignees(ctx context.Context, taskID uint64) ([]models.TaskAssignee, error) {
	var assignees []models.TaskAssignee
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("assigned_at ASC, user_id ASC").
		Find(&assignees).Error; err != nil {
		return nil, err
	}
	return assignees, nil
}
