package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves user administration endpoints.
type UserHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewUserHandler(authService *services.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, logger: logger}
}

// Register creates a user. Admin only.
func (h *UserHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email     string `json:"email" binding:"max=255"`
		Password  string `json:"password" binding:"omitempty,strongpassword"`
		FirstName string `json:"firstName" binding:"max=100"`
		LastName  string `json:"lastName" binding:"max=100"`
		RoleKey   uint64 `json:"roleKey"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, map[string]string{"strongpassword": services.MsgWeakPassword})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleKey,
	})
	if err != nil {
		h.respondUserError(c, err, 0)
		return
	}

	// Reload for the role name.
	created, err := h.authService.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserMessageResponse{
		Message: "User registered successfully.",
		User:    dto.ToUserDTO(*created),
	})
}

// ListUsers returns a plain array of users. The total is sent in X-Total-Count.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.authService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// CurrentUser echoes the caller's token claims.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	email, _ := middleware.GetEmail(c)
	role, _ := middleware.GetRole(c)

	c.JSON(http.StatusOK, dto.CurrentUserDTO{
		UserKey:  userID,
		Email:    email,
		Role:     role,
		IsAdmin:  role == constants.RoleAdmin,
		IsMentor: role == constants.RoleMentor,
		IsIntern: role == constants.RoleIntern,
	})
}

func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.authService.ListRoles(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleDTOs(roles))
}

// UpdateUserRole moves a user to another role by name. Admin only.
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId", "user ID")
	if !ok {
		return
	}

	type UpdateUserRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, nil)
		return
	}

	user, err := h.authService.UpdateUserRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		h.respondUserError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, dto.UserMessageResponse{
		Message: "User role updated successfully.",
		User:    dto.ToUserDTO(*user),
	})
}

func (h *UserHandler) respondUserError(c *gin.Context, err error, userID uint64) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User already exists.")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, fmt.Sprintf("User with ID %d not found.", userID))
	default:
		respondInternal(c, h.logger, err)
	}
}
