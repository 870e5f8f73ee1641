package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint64     `gorm:"primarykey" json:"id"`
	Email           string     `gorm:"type:varchar(255);not null" json:"email"`
	EmailNormalized string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	PasswordHash    string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName       string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName        string     `gorm:"type:varchar(100)" json:"last_name"`
	RoleID          uint64     `gorm:"not null;index" json:"role_id"`
	TeamID          *uint64    `gorm:"index" json:"team_id"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`

	// Relations
	Role Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}

// Column widths of the user identity fields, in characters.
const (
	UserEmailSize = 255
	UserNameSize  = 100
)

// FullName joins first and last name the way mentions refer to people.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BeforeSave keeps EmailNormalized in step with Email so the unique index
// rejects case variants of an existing address.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Email != "" {
		u.EmailNormalized = NormalizeEmail(u.Email)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
