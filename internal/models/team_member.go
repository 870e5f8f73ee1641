package models

import "time"

type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"team_id"`
	UserID   uint64    `gorm:"primarykey" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
