package middleware

import (
	"net/http"

	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery returns a middleware that recovers from panics
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.Stack("stacktrace"),
				)

				if !c.Writer.Written() {
					apierrors.RespondWithError(c, http.StatusInternalServerError,
						apierrors.NewAPIError(apierrors.ErrCodeInternalError, "Internal server error"))
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
