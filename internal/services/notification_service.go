package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// unreadCache is the part of the Redis client the unread counter needs.
type unreadCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// NotificationService serves a user's own notifications. Unread counts are
// cached in Redis when a client is configured.
//
// Cached counts live under a key that carries a per-user version. Every write
// bumps the version, so a count computed before the write can only be stored
// under a key no later reader looks at.
type NotificationService struct {
	store     repository.Store
	cache     unreadCache
	unreadTTL time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService. rdb may be nil.
func NewNotificationService(
	store repository.Store,
	rdb *redis.Client,
	unreadTTL time.Duration,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *NotificationService {
	s := &NotificationService{
		store:     store,
		unreadTTL: unreadTTL,
		metrics:   appMetrics,
		logger:    logger,
	}
	if rdb != nil {
		s.cache = rdb
	}
	return s
}

func unreadVersionKey(userID uint64) string {
	return fmt.Sprintf("unread:%d:version", userID)
}

func unreadCacheKey(userID uint64, version int64) string {
	return fmt.Sprintf("unread:%d:v%d", userID, version)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint64) ([]models.Notification, error) {
	notifications, err := s.store.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	key, cacheable := s.unreadKey(ctx, userID)

	if cacheable {
		cached, err := s.cache.Get(ctx, key).Int64()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read unread cache", zap.Uint64("user_id", userID), zap.Error(err))
		}
	}

	count, err := s.store.Notifications().GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, count, s.unreadTTL).Err(); err != nil {
			s.logger.Warn("failed to cache unread count", zap.Uint64("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}

// unreadKey reads the user's current cache version. It must run before the
// count is loaded from the database.
func (s *NotificationService) unreadKey(ctx context.Context, userID uint64) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	version, err := s.cache.Get(ctx, unreadVersionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("failed to read unread cache version", zap.Uint64("user_id", userID), zap.Error(err))
		return "", false
	}
	return unreadCacheKey(userID, version), true
}

// MarkAsRead flags one of the user's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint64) error {
	if err := s.store.Notifications().MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllAsRead flags every unread notification of the user and returns how many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint64) (int64, error) {
	updated, err := s.store.Notifications().MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return updated, nil
}

// CreateNotificationInput represents input for creating a notification
type CreateNotificationInput struct {
	UserID      uint64
	Title       string
	Message     string
	Type        string
	RelatedID   *uint64
	RelatedType *string
}

// Create stores a notification for an existing user.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidInput("Title is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		return nil, invalidInput("Type is required")
	}
	switch {
	case tooLong(input.Title, models.NotificationTitleSize):
		return nil, invalidInput(fmt.Sprintf("Title must be at most %d characters", models.NotificationTitleSize))
	case tooLong(input.Message, models.NotificationMessageSize):
		return nil, invalidInput(fmt.Sprintf("Message must be at most %d characters", models.NotificationMessageSize))
	case tooLong(input.Type, models.NotificationTypeSize):
		return nil, invalidInput(fmt.Sprintf("Type must be at most %d characters", models.NotificationTypeSize))
	case input.RelatedType != nil && tooLong(*input.RelatedType, models.NotificationTypeSize):
		return nil, invalidInput(fmt.Sprintf("Related type must be at most %d characters", models.NotificationTypeSize))
	}

	if _, err := s.store.Users().FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidInput("Target user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	notification := &models.Notification{
		UserID:      input.UserID,
		Title:       input.Title,
		Message:     input.Message,
		Type:        input.Type,
		RelatedID:   input.RelatedID,
		RelatedType: input.RelatedType,
	}
	if err := s.store.Notifications().Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.Delivered(ctx, *notification)
	return notification, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, userID uint64) error {
	if err := s.store.Notifications().Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// Delivered must be called once notifications are committed. It counts them
// and drops the cached unread count of every recipient.
func (s *NotificationService) Delivered(ctx context.Context, notifications ...models.Notification) {
	if len(notifications) == 0 {
		return
	}

	byType := make(map[string]int)
	recipients := make(map[uint64]struct{})
	for _, n := range notifications {
		byType[n.Type]++
		recipients[n.UserID] = struct{}{}
	}
	for notificationType, n := range byType {
		s.metrics.AddNotifications(notificationType, n)
	}
	for userID := range recipients {
		s.invalidateUnread(ctx, userID)
	}

	s.logger.Info("notifications created", zap.Int("count", len(notifications)))
}

// invalidateUnread bumps the user's cache version. The version outlives the
// counts cached under it so an expired version cannot revive an old count.
func (s *NotificationService) invalidateUnread(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	key := unreadVersionKey(userID)
	if err := s.cache.Incr(ctx, key).Err(); err != nil {
		s.logger.Error("failed to invalidate unread cache", zap.Uint64("user_id", userID), zap.Error(err))
		return
	}
	if s.unreadTTL > 0 {
		if err := s.cache.Expire(ctx, key, 2*s.unreadTTL).Err(); err != nil {
			s.logger.Warn("failed to set unread cache version expiry", zap.Uint64("user_id", userID), zap.Error(err))
		}
	}
}
