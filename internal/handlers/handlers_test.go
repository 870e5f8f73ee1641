package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/constants"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type handlerTestEnv struct {
	db            *gorm.DB
	store         repository.Store
	tokens        *auth.TokenManager
	metrics       *metrics.Metrics
	notifications *services.NotificationService
	mailer        *capturingMailer
	logger        *zap.Logger
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zap.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)
	store := repository.NewStore(db)

	return handlerTestEnv{
		db:    db,
		store: store,
		tokens: auth.NewTokenManager(config.JWTConfig{
			Secret:   "handler-secret",
			Issuer:   "portal-test",
			Audience: "portal-test-clients",
			TokenTTL: time.Hour,
			ResetTTL: 30 * time.Minute,
		}),
		metrics:       m,
		notifications: services.NewNotificationService(store, nil, time.Minute, m, logger),
		mailer:        &capturingMailer{},
		logger:        logger,
	}
}

func (e handlerTestEnv) authService() *services.AuthService {
	return services.NewAuthService(e.store, e.tokens, e.mailer, "http://portal.test", e.metrics, e.logger)
}

// capturingMailer keeps reset links instead of sending them.
type capturingMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *capturingMailer) SendPasswordReset(_ context.Context, _ string, link string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

// testRequest describes one call made directly against a handler.
type testRequest struct {
	method string
	url    string
	body   interface{}
	params gin.Params
	userID uint64
	role   string
}

func newTestContext(t *testing.T, r testRequest) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var payload []byte
	switch b := r.body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(r.method, r.url, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = r.params
	if r.userID != 0 {
		c.Set(constants.ContextKeyUserID, r.userID)
	}
	if r.role != "" {
		c.Set(constants.ContextKeyRole, r.role)
	}
	return c, w
}

func serve(t *testing.T, handler gin.HandlerFunc, r testRequest) *httptest.ResponseRecorder {
	t.Helper()
	c, w := newTestContext(t, r)
	handler(c)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	decodeJSON(t, w, &body)
	return body
}

func param(key, value string) gin.Params {
	return gin.Params{{Key: key, Value: value}}
}
