package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/mailer"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
)

// Client-facing messages for password rules.
const (
	MsgWeakPassword      = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character."
	MsgResetWeakPassword = "Password must meet complexity requirements."
)

// AuthService handles login, registration, password reset and user administration.
type AuthService struct {
	store           repository.Store
	tokens          *auth.TokenManager
	mailer          mailer.Mailer
	frontendBaseURL string
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	store repository.Store,
	tokens *auth.TokenManager,
	m mailer.Mailer,
	frontendBaseURL string,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		store:           store,
		tokens:          tokens,
		mailer:          m,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		metrics:         appMetrics,
		logger:          logger,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a signed access token and the user it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, invalidInput("Email and Password are required.")
	}

	user, err := s.store.Users().FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil || !user.IsActive {
		s.metrics.RecordLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueAccessToken(user.ID, user.Email, user.Role.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uint64
}

// Register creates a user. Callers must already be authorized as Admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, invalidInput("Email and Password are required.")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, invalidInput("First Name and Last Name are required.")
	}
	if tooLong(email, models.UserEmailSize) {
		return nil, invalidInput(fmt.Sprintf("Email must be at most %d characters.", models.UserEmailSize))
	}
	if tooLong(strings.TrimSpace(input.FirstName), models.UserNameSize) || tooLong(strings.TrimSpace(input.LastName), models.UserNameSize) {
		return nil, invalidInput(fmt.Sprintf("First Name and Last Name must be at most %d characters.", models.UserNameSize))
	}
	if input.RoleID == 0 {
		return nil, invalidInput("Valid Role is required.")
	}
	if !auth.IsStrongPassword(input.Password) {
		return nil, invalidInput(MsgWeakPassword)
	}

	if _, err := s.store.Roles().FindByID(ctx, input.RoleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidInput("Valid Role is required.")
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		RoleID:       input.RoleID,
		IsActive:     true,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint64("user_id", user.ID), zap.Uint64("role_id", user.RoleID))
	return user, nil
}

// ForgotPassword mails a reset link when the email belongs to a user. It
// reports success either way so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return invalidInput("Email is required.")
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.tokens.IssueResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := s.ResetLink(token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link, s.tokens.ResetTTL()); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.Uint64("user_id", user.ID),
			zap.Error(err),
		)
	}
	return nil
}

// ResetLink builds the frontend URL that redeems token.
func (s *AuthService) ResetLink(token string) string {
	return s.frontendBaseURL + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetPassword redeems a reset token and overwrites the stored hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(newPassword) == "" {
		return invalidInput("Token and new password are required.")
	}
	if !auth.IsStrongPassword(newPassword) {
		return invalidInput(MsgResetWeakPassword)
	}

	email, err := s.tokens.ParseResetToken(token)
	if err != nil || strings.TrimSpace(email) == "" {
		return ErrInvalidResetToken
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidInput("Invalid user.")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", zap.Uint64("user_id", user.ID))
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *AuthService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.store.Roles().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// UpdateUserRole moves a user to the role with the given name.
func (s *AuthService) UpdateUserRole(ctx context.Context, userID uint64, roleName string) (*models.User, error) {
	var updated *models.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		role, err := tx.Roles().FindByName(ctx, strings.TrimSpace(roleName))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidInput(fmt.Sprintf("Role '%s' not found.", roleName))
			}
			return fmt.Errorf("failed to find role: %w", err)
		}

		if err := tx.Users().UpdateRole(ctx, user.ID, role.ID); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		user.RoleID = role.ID
		user.Role = *role
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
