package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/testutil"
	"github.com/custor/portal-api/internal/utils"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(f *fixture, mail *recordingMailer) *AuthService {
	return NewAuthService(f.store, newTokenManager(), mail, "http://localhost:4200/", f.metrics, zap.NewNop())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{})
	user := testutil.CreateUser(t, f.db, "Mentor@Example.com", "Maya", "Mentor", constants.RoleMentor)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Email: "mentor@example.COM", Password: testutil.Password})
	require.NoError(t, err)

	claims, err := newTokenManager().ParseAccessToken(result.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "Mentor@Example.com", claims.Email)
	assert.Equal(t, constants.RoleMentor, claims.Role)

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "mentor@example.com", Password: "Wrong123!"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testutil.Password})
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = svc.Login(ctx, LoginInput{Email: " ", Password: "x"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.LoginsTotal.WithLabelValues(metrics.LoginSuccess)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(f.metrics.LoginsTotal.WithLabelValues(metrics.LoginFailure)))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{})
	ctx := context.Background()
	intern := testutil.Role(t, f.db, constants.RoleIntern)

	valid := RegisterInput{
		Email:     "New.Intern@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "New",
		LastName:  "Intern",
		RoleID:    intern.ID,
	}

	user, err := svc.Register(ctx, valid)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, valid.Password))

	dup := valid
	dup.Email = "new.intern@EXAMPLE.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailTaken)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = " " }},
		{"zero role", func(in *RegisterInput) { in.RoleID = 0 }},
		{"unknown role", func(in *RegisterInput) { in.RoleID = 999 }},
		{"weak password", func(in *RegisterInput) { in.Password = "password1" }},
		{"password over bcrypt limit", func(in *RegisterInput) { in.Password = "Aa1!" + strings.Repeat("x", 80) }},
		{"long first name", func(in *RegisterInput) { in.FirstName = strings.Repeat("n", 101) }},
		{"long email", func(in *RegisterInput) { in.Email = strings.Repeat("e", 250) + "@example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Email = "other@example.com"
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func resetTokenFrom(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	return u.Query().Get("token")
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	mail := &recordingMailer{}
	svc := newAuthService(f, mail)
	ctx := context.Background()
	user := testutil.CreateIntern(t, f.db, "ivy@example.com", "Ivy", "Intern")

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, mail.sent, "unknown addresses get no mail")

	require.NoError(t, svc.ForgotPassword(ctx, "IVY@example.com"))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ivy@example.com", mail.sent[0].to)
	assert.Equal(t, 30*time.Minute, mail.sent[0].validFor)
	assert.Contains(t, mail.sent[0].link, "http://localhost:4200/reset-password?token=")

	token := resetTokenFrom(t, mail.sent[0].link)
	require.NoError(t, svc.ResetPassword(ctx, token, "N3w!Password"))

	updated, err := f.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(updated.PasswordHash, "N3w!Password"))
	assert.Error(t, auth.CheckPassword(updated.PasswordHash, testutil.Password))
}

func TestForgotPasswordSwallowsMailErrors(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{err: errors.New("smtp down")})
	testutil.CreateIntern(t, f.db, "ivy@example.com", "Ivy", "Intern")

	assert.NoError(t, svc.ForgotPassword(context.Background(), "ivy@example.com"))
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{})
	ctx := context.Background()
	user := testutil.CreateIntern(t, f.db, "ivy@example.com", "Ivy", "Intern")

	past := newTokenManager().WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := past.IssueResetToken(user.Email)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ResetPassword(ctx, expired, "N3w!Password"), ErrInvalidResetToken)

	login, _, err := newTokenManager().IssueAccessToken(user.ID, user.Email, constants.RoleIntern)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ResetPassword(ctx, login, "N3w!Password"), ErrInvalidResetToken)

	valid, err := newTokenManager().IssueResetToken(user.Email)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ResetPassword(ctx, valid+"x", "N3w!Password"), ErrInvalidResetToken)

	var verr *ValidationError
	assert.True(t, errors.As(svc.ResetPassword(ctx, valid, "weak"), &verr))

	ghost, err := newTokenManager().IssueResetToken("ghost@example.com")
	require.NoError(t, err)
	assert.True(t, errors.As(svc.ResetPassword(ctx, ghost, "N3w!Password"), &verr))
	assert.Equal(t, "Invalid user.", verr.Message)
}

func TestUpdateUserRoleAndListings(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{})
	ctx := context.Background()
	user := testutil.CreateIntern(t, f.db, "ivy@example.com", "Ivy", "Intern")
	testutil.CreateIntern(t, f.db, "ian@example.com", "Ian", "Intern")

	updated, err := svc.UpdateUserRole(ctx, user.ID, constants.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleMentor, updated.Role.Name)

	reloaded, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleMentor, reloaded.Role.Name)

	_, err = svc.UpdateUserRole(ctx, 999, constants.RoleMentor)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdateUserRole(ctx, user.ID, "Wizard")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Role 'Wizard' not found.", verr.Message)

	users, total, err := svc.ListUsers(ctx, utils.NewPaginationParams(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestOverlongPasswordsAreWeak(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, &recordingMailer{})
	ctx := context.Background()
	user := testutil.CreateIntern(t, f.db, "ivy@example.com", "Ivy", "Intern")
	overlong := "Aa1!" + strings.Repeat("x", 80)

	_, err := svc.Register(ctx, RegisterInput{
		Email:     "new@example.com",
		Password:  overlong,
		FirstName: "New",
		LastName:  "Intern",
		RoleID:    testutil.Role(t, f.db, constants.RoleIntern).ID,
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, MsgWeakPassword, verr.Message)

	token, err := newTokenManager().IssueResetToken(user.Email)
	require.NoError(t, err)
	err = svc.ResetPassword(ctx, token, overlong)
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, MsgResetWeakPassword, verr.Message)

	stored, err := f.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, testutil.Password))
}
