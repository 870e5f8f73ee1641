package handlers

import (
	"errors"
	"fmt"
	"strconv"

	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// parseIDParam reads a positive numeric path parameter and answers 400 when
// it is malformed.
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", label))
		return 0, false
	}
	return id, true
}

// respondBindError reports a body that failed to decode or validate.
// tagMessages replaces the generic message for specific validation tags.
func respondBindError(c *gin.Context, err error, tagMessages map[string]string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if msg, ok := tagMessages[fe.Tag()]; ok {
			apierrors.BadRequest(c, msg)
			return
		}
		details[fe.Field()] = fe.Tag()
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", details)
}

// respondValidation answers 400 with the service's message when err is a
// ValidationError.
func respondValidation(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		apierrors.BadRequest(c, verr.Message)
		return true
	}
	return false
}

// respondInternal logs err and answers with the generic 500 body.
func respondInternal(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	apierrors.InternalError(c)
}

// actingUserID prefers the authenticated caller over an id sent in the body.
func actingUserID(c *gin.Context, fromBody uint64) uint64 {
	if id, ok := middleware.GetUserID(c); ok {
		return id
	}
	return fromBody
}
