package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	notificationService *services.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToNotificationDTOs(notifications))
}

// UnreadCount answers with a bare number.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id", "notification ID")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		h.respondNotificationError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Notification marked as read."})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read.",
		"updated": updated,
	})
}

// Create stores a notification for any existing user.
func (h *NotificationHandler) Create(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}

	type NotificationRequest struct {
		UserID      uint64  `json:"userId" binding:"required"`
		Title       string  `json:"title" binding:"max=200"`
		Message     string  `json:"message" binding:"max=500"`
		Type        string  `json:"type" binding:"max=50"`
		RelatedID   *uint64 `json:"relatedId"`
		RelatedType *string `json:"relatedType" binding:"omitempty,max=50"`
	}

	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), services.CreateNotificationInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Message:     req.Message,
		Type:        req.Type,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
	})
	if err != nil {
		h.respondNotificationError(c, err, 0)
		return
	}
	c.JSON(http.StatusCreated, dto.ToNotificationDTO(*notification))
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id", "notification ID")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, userID); err != nil {
		h.respondNotificationError(c, err, id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) respondNotificationError(c *gin.Context, err error, id uint64) {
	if respondValidation(c, err) {
		return
	}
	if errors.Is(err, services.ErrNotificationNotFound) {
		apierrors.NotFound(c, fmt.Sprintf("Notification with ID %d not found.", id))
		return
	}
	respondInternal(c, h.logger, err)
}
