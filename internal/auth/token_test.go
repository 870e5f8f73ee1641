package auth

import (
	"testing"
	"time"

	"github.com/custor/portal-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "portal-test",
		Audience: "portal-clients",
		TokenTTL: time.Hour,
		ResetTTL: 30 * time.Minute,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, expiresAt, err := m.IssueAccessToken(42, "ada@example.com", "Mentor")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Mentor", claims.Role)
}

func TestAccessTokenRejections(t *testing.T) {
	m := newTestManager()
	token, _, err := m.IssueAccessToken(1, "a@example.com", "Intern")
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		_, err := m.ParseAccessToken(token[:len(token)-2] + "xx")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenManager(config.JWTConfig{Secret: "nope", Issuer: "portal-test", Audience: "portal-clients", TokenTTL: time.Hour})
		_, err := other.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenManager(config.JWTConfig{Secret: "test-secret", Issuer: "portal-test", Audience: "elsewhere", TokenTTL: time.Hour})
		_, err := other.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := m.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
		_, err := later.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "1", "iss": "portal-test", "aud": "portal-clients",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("reset token", func(t *testing.T) {
		reset, err := m.IssueResetToken("a@example.com")
		require.NoError(t, err)
		_, err = m.ParseAccessToken(reset)
		assert.ErrorIs(t, err, ErrResetToken)
	})
}

func TestResetToken(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueResetToken("ada@example.com")
	require.NoError(t, err)

	email, err := m.ParseResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	t.Run("login token is not a reset token", func(t *testing.T) {
		login, _, err := m.IssueAccessToken(1, "ada@example.com", "Intern")
		require.NoError(t, err)
		_, err = m.ParseResetToken(login)
		assert.ErrorIs(t, err, ErrNotResetToken)
	})

	t.Run("leeway covers small skew", func(t *testing.T) {
		skewed := m.WithClock(func() time.Time { return time.Now().Add(30*time.Minute + 30*time.Second) })
		_, err := skewed.ParseResetToken(token)
		assert.NoError(t, err)
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		late := m.WithClock(func() time.Time { return time.Now().Add(32 * time.Minute) })
		_, err := late.ParseResetToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
