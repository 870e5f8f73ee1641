// Package testutil builds throwaway SQLite databases and fixtures for tests.
package testutil

import (
	"testing"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/database"
	"github.com/custor/portal-api/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory database with the built-in roles seeded.
// The pool is pinned to one connection because every new SQLite memory
// connection starts out empty.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.SeedRoles(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Role returns the seeded role with the given name.
func Role(t testing.TB, db *gorm.DB, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return role
}

// CreateUser inserts a user whose password is "Secret123!".
func CreateUser(t testing.TB, db *gorm.DB, email, first, last, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		RoleID:       Role(t, db, role).ID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Password is the plaintext behind every CreateUser hash.
const Password = "Secret123!"

// CreateIntern is shorthand for an Intern user.
func CreateIntern(t testing.TB, db *gorm.DB, email, first, last string) *models.User {
	return CreateUser(t, db, email, first, last, constants.RoleIntern)
}

// CreateProject inserts a project owned by creatorID.
func CreateProject(t testing.TB, db *gorm.DB, name string, creatorID uint64) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, CreatorID: creatorID}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task, optionally inside a project.
func CreateTask(t testing.TB, db *gorm.DB, title string, creatorID uint64, projectID *uint64) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, CreatorID: creatorID, ProjectID: projectID}
	require.NoError(t, db.Create(task).Error)
	return task
}

// CreateFile inserts a current file row without touching storage.
func CreateFile(t testing.TB, db *gorm.DB, name string, projectID, uploaderID uint64) *models.File {
	t.Helper()
	file := &models.File{
		ProjectID:   projectID,
		Name:        name,
		ContentType: "text/plain",
		StorageKey:  "test/" + name,
		Size:        1,
		Version:     1,
		UploaderID:  uploaderID,
		IsCurrent:   true,
	}
	require.NoError(t, db.Create(file).Error)
	return file
}

// CreateTeam inserts an active team.
func CreateTeam(t testing.TB, db *gorm.DB, name string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, IsActive: true}
	require.NoError(t, db.Create(team).Error)
	return team
}
