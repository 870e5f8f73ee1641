package models

import "time"

type Project struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	CreatorID   uint64     `gorm:"not null;index" json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`

	// Relations
	Creator User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Files   []File `gorm:"foreignKey:ProjectID" json:"files,omitempty"`
}
