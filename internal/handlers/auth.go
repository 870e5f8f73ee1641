package handlers

import (
	"errors"
	"net/http"

	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const forgotPasswordAck = "If the email exists, a reset link has been sent."

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates a user and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserDTO(*result.User),
	})
}

// ForgotPassword mails a reset link. The answer never reveals whether the
// address is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: forgotPasswordAck})
}

// ResetPassword redeems a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword" binding:"omitempty,strongpassword"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, map[string]string{"strongpassword": services.MsgResetWeakPassword})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password reset successful."})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid email or password.")
	case errors.Is(err, services.ErrInvalidResetToken):
		apierrors.BadRequest(c, "Invalid or expired token.")
	default:
		respondInternal(c, h.logger, err)
	}
}
