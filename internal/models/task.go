package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// TaskTitleSize is the width of Task.Title in characters.
const TaskTitleSize = 255

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'Low'" json:"priority"`
	Deadline    *time.Time   `json:"deadline"`
	ProjectID   *uint64      `gorm:"index" json:"project_id"`
	CreatorID   uint64       `gorm:"not null;index" json:"creator_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator   User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignees []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
}
