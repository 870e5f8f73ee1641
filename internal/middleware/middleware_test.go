package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/constants"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.JWTConfig{
		Secret:   "middleware-secret",
		Issuer:   "portal-test",
		Audience: "portal-test-clients",
		TokenTTL: time.Hour,
		ResetTTL: 30 * time.Minute,
	})
}

func whoAmI(c *gin.Context) {
	id, ok := GetUserID(c)
	role, _ := GetRole(c)
	email, _ := GetEmail(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "authenticated": ok, "role": role, "email": email})
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/me", RequireAuth(tokens), whoAmI)

	access, _, err := tokens.IssueAccessToken(7, "ivy@example.com", constants.RoleIntern)
	require.NoError(t, err)
	reset, err := tokens.IssueResetToken("ivy@example.com")
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/me", access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"authenticated":true,"role":"Intern","email":"ivy@example.com"}`, w.Body.String())

	for name, token := range map[string]string{
		"missing":  "",
		"reset":    reset,
		"tampered": access + "x",
	} {
		t.Run(name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/me", token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, apierrors.ErrCodeUnauthorized, decodeError(t, w).Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+access)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/open", OptionalAuth(tokens), whoAmI)

	access, _, err := tokens.IssueAccessToken(3, "maya@example.com", constants.RoleMentor)
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = perform(r, http.MethodGet, "/open", "garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = perform(r, http.MethodGet, "/open", access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":3`)
}

func TestRequireRole(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/admin", RequireAuth(tokens), RequireRole(constants.RoleAdmin), whoAmI)

	admin, _, err := tokens.IssueAccessToken(1, "admin@example.com", constants.RoleAdmin)
	require.NoError(t, err)
	intern, _, err := tokens.IssueAccessToken(2, "ivy@example.com", constants.RoleIntern)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", admin).Code)

	w := perform(r, http.MethodGet, "/admin", intern)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apierrors.ErrCodeForbidden, decodeError(t, w).Code)

	bare := gin.New()
	bare.GET("/admin", RequireRole(constants.RoleAdmin), whoAmI)
	assert.Equal(t, http.StatusUnauthorized, perform(bare, http.MethodGet, "/admin", "").Code)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeInternalError, body.Code)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "kaboom")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLoggerSkipsProbes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/things", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, http.MethodGet, "/health", "")
	perform(r, http.MethodGet, "/api/things", "")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/api/things", entries[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/tasks/:taskId", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/api/tasks/1", "")
	perform(r, http.MethodGet, "/api/tasks/2", "")
	perform(r, http.MethodGet, "/metrics", "")

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/tasks/:taskId", "2xx")))
	assert.Equal(t, 1, promtestutil.CollectAndCount(m.HTTPRequestsTotal))
}
