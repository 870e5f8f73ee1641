package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. The returned handle translates
// driver errors into gorm.ErrDuplicatedKey and friends.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	dsn := cfg.Database.GetDSN()

	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql", "":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	logLevel := logger.Silent
	if cfg.Server.GinMode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.Driver != "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	log.Info("database connection established", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.Team{},
		&models.User{},
		&models.TeamMember{},
		&models.Project{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.File{},
		&models.Comment{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema and the secondary indexes.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

var defaultRoles = []models.Role{
	{Name: constants.RoleAdmin, Description: "Full access to the portal"},
	{Name: constants.RoleMentor, Description: "Leads teams of interns"},
	{Name: constants.RoleIntern, Description: "Team member"},
}

// SeedRoles inserts the built-in roles that are missing.
func SeedRoles(db *gorm.DB) error {
	for _, role := range defaultRoles {
		r := role
		if err := db.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap administrator when the email is configured
// and no user with that address exists yet.
func SeedAdmin(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email_normalized = ?", models.NormalizeEmail(admin.Email)).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	var role models.Role
	if err := db.Where("name = ?", constants.RoleAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("failed to find admin role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &models.User{
		Email:        admin.Email,
		PasswordHash: string(hash),
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
