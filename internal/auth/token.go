// Package auth issues and validates the portal's JWTs and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/custor/portal-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// resetMarker is the claim value that distinguishes password-reset tokens.
const resetMarker = "1"

// resetLeeway tolerates clock skew between issuer and validator.
const resetLeeway = time.Minute

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotResetToken = errors.New("token is not a password reset token")
	ErrResetToken    = errors.New("password reset token cannot be used for authentication")
)

// Claims is the payload of both token kinds. Reset tokens carry PasswordReset
// and no subject.
type Claims struct {
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	PasswordReset string `json:"pwdreset,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	tokenTTL time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// NewTokenManager creates a TokenManager from the jwt config section.
func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		tokenTTL: cfg.TokenTTL,
		resetTTL: cfg.ResetTTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *m
	clone.now = now
	return &clone
}

// ResetTTL is how long a password reset token stays valid.
func (m *TokenManager) ResetTTL() time.Duration {
	return m.resetTTL
}

// IssueAccessToken signs a login token for the user.
func (m *TokenManager) IssueAccessToken(userID uint64, email, role string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenTTL)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := m.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueResetToken signs a short-lived password reset token for email.
func (m *TokenManager) IssueResetToken(email string) (string, error) {
	now := m.now()
	claims := Claims{
		Email:         email,
		PasswordReset: resetMarker,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.resetTTL)),
		},
	}
	return m.sign(claims)
}

// ParseAccessToken validates a login token. Reset tokens are rejected.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString, 0)
	if err != nil {
		return nil, err
	}
	if claims.PasswordReset != "" {
		return nil, ErrResetToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseResetToken validates a reset token and returns the email it was issued for.
func (m *TokenManager) ParseResetToken(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, resetLeeway)
	if err != nil {
		return "", err
	}
	if claims.PasswordReset != resetMarker {
		return "", ErrNotResetToken
	}
	if claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (m *TokenManager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(tokenString string, leeway time.Duration) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
