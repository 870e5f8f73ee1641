package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
	RelatedID   *uint64   `json:"relatedId"`
	RelatedType *string   `json:"relatedType"`
}

func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          n.ID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
	}
}

func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	out := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		out[i] = ToNotificationDTO(n)
	}
	return out
}
