package job

import (
	"context"
	"fmt"
	"time"

	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/repository"
	"go.uber.org/zap"
)

// NotificationCleanupJob deletes read notifications older than the retention window.
type NotificationCleanupJob struct {
	notifications repository.NotificationRepository
	retention     time.Duration
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationCleanupJob(
	notifications repository.NotificationRepository,
	retentionDays int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		notifications: notifications,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

func (j *NotificationCleanupJob) Name() string {
	return "notification_cleanup"
}

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", j.retention)
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.notifications.CleanupOld(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up notifications: %w", err)
	}

	j.metrics.AddNotificationsPurged(deleted)
	j.logger.Info("old notifications removed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
	return nil
}
