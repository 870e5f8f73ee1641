package middleware

import (
	"errors"
	"strings"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/constants"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/gin-gonic/gin"
)

var errMissingToken = errors.New("missing bearer token")

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// authenticate validates the bearer token and stores its claims in the context.
func authenticate(c *gin.Context, tokens *auth.TokenManager) error {
	raw, err := bearerToken(c)
	if err != nil {
		return err
	}
	claims, err := tokens.ParseAccessToken(raw)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyEmail, claims.Email)
	c.Set(constants.ContextKeyRole, claims.Role)
	return nil
}

// RequireAuth checks if the user is authenticated via bearer token
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, tokens); err != nil {
			if errors.Is(err, errMissingToken) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.Unauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through. A bad token is ignored, not rejected.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c, tokens)
		c.Next()
	}
}

// RequireRole allows only callers whose role is one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetRole retrieves the current user's role name from context
func GetRole(c *gin.Context) (string, bool) {
	role := c.GetString(constants.ContextKeyRole)
	return role, role != ""
}

// GetEmail retrieves the current user's email from context
func GetEmail(c *gin.Context) (string, bool) {
	email := c.GetString(constants.ContextKeyEmail)
	return email, email != ""
}
