package models

import "time"

// Column widths of the team fields, in characters.
const (
	TeamNameSize        = 100
	TeamDescriptionSize = 500
)

// Team is soft-deleted through IsActive; rows are never removed.
type Team struct {
	ID          uint64     `gorm:"primarykey" json:"team_key"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Description *string    `gorm:"type:varchar(500)" json:"description"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
