package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAlreadyAssigned = errors.New("user is already assigned to the task")
	ErrNotAssigned     = errors.New("user is not assigned to the task")
)

// TaskService handles task assignment
type TaskService struct {
	store         repository.Store
	notifications *NotificationService
	logger        *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, notifications *NotificationService, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:         store,
		notifications: notifications,
		logger:        logger,
	}
}

// AssignUser adds userID to the task's assignees.
func (s *TaskService) AssignUser(ctx context.Context, taskID, userID uint64) (*models.TaskAssignee, error) {
	var assignee *models.TaskAssignee

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Tasks().FindByID(ctx, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if _, err := tx.Tasks().FindAssignee(ctx, taskID, userID); err == nil {
			return ErrAlreadyAssigned
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check assignment: %w", err)
		}

		assignee = &models.TaskAssignee{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: time.Now().UTC(),
		}
		if err := tx.Tasks().AddAssignee(ctx, assignee); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAssigned
			}
			return fmt.Errorf("failed to assign user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user assigned to task", zap.Uint64("task_id", taskID), zap.Uint64("user_id", userID))
	return assignee, nil
}

// ListAssignees lists the users assigned to a task.
func (s *TaskService) ListAssignees(ctx context.Context, taskID uint64) ([]models.TaskAssignee, error) {
	if _, err := s.store.Tasks().FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	assignees, err := s.store.Tasks().ListAssignees(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	return assignees, nil
}

// UnassignUser removes the assignment and, when the task belongs to a
// project, tells the user in the same transaction.
func (s *TaskService) UnassignUser(ctx context.Context, taskID, userID uint64) error {
	var notification *models.Notification

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Tasks().RemoveAssignee(ctx, taskID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAssigned
			}
			return fmt.Errorf("failed to unassign user: %w", err)
		}

		task, err := tx.Tasks().FindByID(ctx, taskID, "Project")
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if task.Project == nil {
			return nil
		}

		relatedID := task.ID
		relatedType := constants.RelatedTypeTask
		notification = &models.Notification{
			UserID:      userID,
			Title:       "Task Unassigned",
			Message:     clip(fmt.Sprintf("You have been unassigned from task '%s' in project '%s'", task.Title, task.Project.Name), models.NotificationMessageSize),
			Type:        constants.NotificationTypeTaskAssigned,
			RelatedID:   &relatedID,
			RelatedType: &relatedType,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notification != nil {
		s.notifications.Delivered(ctx, *notification)
	}
	s.logger.Info("user unassigned from task", zap.Uint64("task_id", taskID), zap.Uint64("user_id", userID))
	return nil
}
