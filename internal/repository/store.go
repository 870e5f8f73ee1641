package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormStore is the GORM implementation of Store.
type GormStore struct {
	db *gorm.DB
}

// NewStore wraps db.
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *GormStore) Roles() RoleRepository                 { return NewRoleRepository(s.db) }
func (s *GormStore) Teams() TeamRepository                 { return NewTeamRepository(s.db) }
func (s *GormStore) Projects() ProjectRepository           { return NewProjectRepository(s.db) }
func (s *GormStore) Tasks() TaskRepository                 { return NewTaskRepository(s.db) }
func (s *GormStore) Files() FileRepository                 { return NewFileRepository(s.db) }
func (s *GormStore) Comments() CommentRepository           { return NewCommentRepository(s.db) }
func (s *GormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

// Transaction runs fn with a Store bound to a new transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
