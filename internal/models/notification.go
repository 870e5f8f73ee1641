package models

import "time"

// Column widths of the notification text fields, in characters.
const (
	NotificationTitleSize   = 200
	NotificationMessageSize = 500
	NotificationTypeSize    = 50
)

type Notification struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Message     string    `gorm:"type:varchar(500);not null" json:"message"`
	Type        string    `gorm:"type:varchar(50);not null" json:"type"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	RelatedID   *uint64   `json:"related_id"`
	RelatedType *string   `gorm:"type:varchar(50)" json:"related_type"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
