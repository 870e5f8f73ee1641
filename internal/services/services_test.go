package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	store         repository.Store
	metrics       *metrics.Metrics
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	return &fixture{
		db:            db,
		store:         store,
		metrics:       m,
		notifications: NewNotificationService(store, nil, time.Minute, m, zap.NewNop()),
	}
}

func (f *fixture) notificationsFor(t *testing.T, userID uint64) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error)
	return rows
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "portal-test",
		Audience: "portal-test-clients",
		TokenTTL: time.Hour,
		ResetTTL: 30 * time.Minute,
	}
}

func newTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(testJWTConfig())
}

type sentMail struct {
	to       string
	link     string
	validFor time.Duration
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, link string, validFor time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, link: link, validFor: validFor})
	return m.err
}
