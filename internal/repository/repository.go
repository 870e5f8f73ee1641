package repository

import (
	"context"
	"time"

	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/utils"
)

// Store hands out repositories bound to one database handle. Repositories
// obtained inside Transaction share the transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Teams() TeamRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Files() FileRepository
	Comments() CommentRepository
	Notifications() NotificationRepository

	// Transaction runs fn in a single database transaction. Returning an
	// error from fn rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID with the role loaded
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByMention resolves a normalized mention against email or full name.
	// The lowest ID wins when several users match.
	FindByMention(ctx context.Context, mention string) (*models.User, error)

	// List returns a page of users ordered by ID
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// ListUnassigned returns non-admin users without an active team membership
	ListUnassigned(ctx context.Context) ([]models.User, error)

	// UpdatePassword overwrites the stored hash
	UpdatePassword(ctx context.Context, id uint64, hash string) error

	// UpdateRole points the user at another role
	UpdateRole(ctx context.Context, id, roleID uint64) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id uint64) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

// TeamRepository defines the interface for team and membership data access.
// Teams and memberships are only ever soft-deleted.
type TeamRepository interface {
	// Create creates a new team
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds an active team with its active members
	FindByID(ctx context.Context, id uint64) (*models.Team, error)

	// ListActive lists active teams with their active members
	ListActive(ctx context.Context) ([]models.Team, error)

	// ListByActiveMember lists active teams where userID holds an active membership
	ListByActiveMember(ctx context.Context, userID uint64) ([]models.Team, error)

	// Update saves name and description
	Update(ctx context.Context, team *models.Team) error

	// Deactivate soft-deletes a team
	Deactivate(ctx context.Context, id uint64) error

	// FindMember finds a membership regardless of its active flag
	FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error)

	// FindActiveMembershipByUser finds the first active membership of a user
	FindActiveMembershipByUser(ctx context.Context, userID uint64) (*models.TeamMember, error)

	// AddMember inserts a new membership row
	AddMember(ctx context.Context, member *models.TeamMember) error

	// ReactivateMember flips a soft-deleted membership back on
	ReactivateMember(ctx context.Context, teamID, userID uint64, joinedAt time.Time) error

	// DeactivateMember soft-deletes a membership
	DeactivateMember(ctx context.Context, teamID, userID uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uint64) (*models.Project, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error)
}

// TaskRepository defines the interface for task and assignee data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// ListByProject lists the tasks of a project, newest first
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)

	// Update saves all task columns
	Update(ctx context.Context, task *models.Task) error

	// FindAssignee finds a specific task assignee row
	FindAssignee(ctx context.Context, taskID, userID uint64) (*models.TaskAssignee, error)

	// AddAssignee inserts a join row
	AddAssignee(ctx context.Context, assignee *models.TaskAssignee) error

	// RemoveAssignee hard-deletes a join row
	RemoveAssignee(ctx context.Context, taskID, userID uint64) error

	// ListAssignees lists the assignees of a task with their users
	ListAssignees(ctx context.Context, taskID uint64) ([]models.TaskAssignee, error)
}

// FileRepository defines the interface for file metadata access
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id uint64) (*models.File, error)

	// FindCurrentByName finds the current version of a file by name
	FindCurrentByName(ctx context.Context, name string) (*models.File, error)

	// ListByProject lists the current versions of a project's files
	ListByProject(ctx context.Context, projectID uint64) ([]models.File, error)

	// MaxVersion returns the highest version stored for (project, name), or 0
	MaxVersion(ctx context.Context, projectID uint64, name string) (int, error)

	// ClearCurrent marks every version of (project, name) as not current
	ClearCurrent(ctx context.Context, projectID uint64, name string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error

	// FindByOwner finds a comment only if it belongs to the given owner
	FindByOwner(ctx context.Context, id uint64, kind models.CommentOwnerKind, ownerID uint64) (*models.Comment, error)

	// ListByOwner lists an owner's comments, oldest first, with author and role
	ListByOwner(ctx context.Context, kind models.CommentOwnerKind, ownerID uint64) ([]models.Comment, error)

	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint64) error
}

// NotificationRepository defines the interface for notification data access.
// Every method is scoped to the owning user.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error

	// ListByUser lists a user's notifications newest first
	ListByUser(ctx context.Context, userID uint64) ([]models.Notification, error)

	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)

	// MarkAsRead returns gorm.ErrRecordNotFound when the row is not the user's
	MarkAsRead(ctx context.Context, id, userID uint64) error

	// MarkAllAsRead returns the number of rows flipped
	MarkAllAsRead(ctx context.Context, userID uint64) (int64, error)

	// Delete returns gorm.ErrRecordNotFound when the row is not the user's
	Delete(ctx context.Context, id, userID uint64) error

	// CleanupOld hard-deletes read notifications created before cutoff
	CleanupOld(ctx context.Context, cutoff time.Time) (int64, error)
}
