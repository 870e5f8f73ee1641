package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationCleanupJobRun(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateIntern(t, db, "intern@example.com", "Ivy", "Intern")

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.Notification{
		{UserID: user.ID, Title: "old read", Message: "m", Type: "comment", IsRead: true, CreatedAt: now.AddDate(0, 0, -40)},
		{UserID: user.ID, Title: "old unread", Message: "m", Type: "comment", IsRead: false, CreatedAt: now.AddDate(0, 0, -40)},
		{UserID: user.ID, Title: "recent read", Message: "m", Type: "comment", IsRead: true, CreatedAt: now.AddDate(0, 0, -5)},
	}
	require.NoError(t, db.Create(&rows).Error)

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	job := NewNotificationCleanupJob(repository.NewNotificationRepository(db), 30, m, zap.NewNop())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	var titles []string
	require.NoError(t, db.Model(&models.Notification{}).Order("id").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"old unread", "recent read"}, titles)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.NotificationsPurged))
}

func TestNotificationCleanupJobRejectsZeroRetention(t *testing.T) {
	job := NewNotificationCleanupJob(nil, 0, nil, zap.NewNop())
	assert.Error(t, job.Run(context.Background()))
}

type stubJob struct {
	err error
	ran chan struct{}
}

func (s *stubJob) Name() string { return "stub" }

func (s *stubJob) Run(context.Context) error {
	s.ran <- struct{}{}
	return s.err
}

func TestSchedulerRegister(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	assert.Error(t, s.Register("not a cron spec", &stubJob{}))
	assert.NoError(t, s.Register("0 3 * * *", &stubJob{}))
}

func TestSchedulerExecuteLogsFailure(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	j := &stubJob{err: errors.New("boom"), ran: make(chan struct{}, 1)}

	s.execute(j)

	select {
	case <-j.ran:
	default:
		t.Fatal("job did not run")
	}
}
