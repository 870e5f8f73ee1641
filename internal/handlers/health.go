package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	statusConnected     = "connected"
	statusNotConfigured = "not configured"
	statusUnavailable   = "unavailable"
)

// HealthHandler reports whether the database and cache answer.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. redisClient may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	connections := map[string]string{
		"database": statusConnected,
		"redis":    statusNotConfigured,
	}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		connections["database"] = statusUnavailable
		healthy = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// The cache is optional; report it without failing the probe.
			h.logger.Warn("redis health check failed", zap.Error(err))
			connections["redis"] = statusUnavailable
		} else {
			connections["redis"] = statusConnected
		}
	}

	status, text := http.StatusOK, "ok"
	if !healthy {
		status, text = http.StatusServiceUnavailable, "unavailable"
	}
	c.JSON(status, gin.H{
		"status":      text,
		"connections": connections,
	})
}
