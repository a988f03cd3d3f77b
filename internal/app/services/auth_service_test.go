package services_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
)

func newAuthService(f *fixture, mailer services.Mailer) (*services.AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-with-enough-length",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "sims-test",
	})
	svc := services.NewAuthService(
		services.NewCredentialSources(f.repos),
		f.repos.ResetTokens,
		jwtService,
		mailer,
		services.AuthSettings{
			ResetTokenExpiration: time.Hour,
			FrontendURL:          "http://localhost:3000/",
			BcryptCost:           testCost,
			Clock:                f.clock.Now,
		},
		f.logger,
	)
	return svc, jwtService
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc, jwtService := newAuthService(f, nil)

	result, err := svc.Login(f.ctx, models.UserTypeTeacher, "TEACHER@sims.edu", testPassword)
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, result.Account.AccountID())

	claims, err := jwtService.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, claims.UserID)
	assert.Equal(t, models.UserTypeTeacher, claims.UserType)
	assert.Equal(t, f.teacher.Email, claims.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f, nil)

	inactive := *f.student2
	inactive.IsActive = false
	require.NoError(t, f.repos.Students.Update(f.ctx, &inactive))

	tests := []struct {
		name     string
		role     models.UserType
		email    string
		password string
	}{
		{"unknown email", models.UserTypeStudent, "nobody@sims.edu", testPassword},
		{"wrong password", models.UserTypeStudent, f.student.Email, "wrong-password"},
		{"inactive account", models.UserTypeStudent, f.student2.Email, testPassword},
		{"teacher credentials on student login", models.UserTypeStudent, f.teacher.Email, testPassword},
		{"teacher credentials on admin login", models.UserTypeAdmin, f.teacher.Email, testPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(f.ctx, tt.role, tt.email, tt.password)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f, nil)

	login, err := svc.Login(f.ctx, models.UserTypeStudent, f.student.Email, testPassword)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(f.ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.student.ID, refreshed.Account.AccountID())

	_, err = svc.Refresh(f.ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, "access tokens cannot be used to refresh")

	_, err = svc.Refresh(f.ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func resetTokenFrom(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	return u.Query().Get("token")
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	mailer := &recordingMailer{}
	svc, _ := newAuthService(f, mailer)

	require.NoError(t, svc.ForgotPassword(f.ctx, models.UserTypeStudent, "nobody@sims.edu"))
	assert.Empty(t, mailer.links)

	require.NoError(t, svc.ForgotPassword(f.ctx, models.UserTypeStudent, f.student.Email))
	require.Len(t, mailer.links, 1)
	assert.Equal(t, f.student.Email, mailer.to[0])
	token := resetTokenFrom(t, mailer.links[0])
	require.NotEmpty(t, token)

	err := svc.ResetPassword(f.ctx, models.UserTypeTeacher, token, "new-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken, "token is scoped to the student role")

	require.NoError(t, svc.ResetPassword(f.ctx, models.UserTypeStudent, token, "new-password"))

	err = svc.ResetPassword(f.ctx, models.UserTypeStudent, token, "another-password")
	assert.ErrorIs(t, err, apperrors.ErrPasswordResetTokenUsed)

	_, err = svc.Login(f.ctx, models.UserTypeStudent, f.student.Email, testPassword)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(f.ctx, models.UserTypeStudent, f.student.Email, "new-password")
	assert.NoError(t, err)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	f := newFixture(t)
	mailer := &recordingMailer{}
	svc, _ := newAuthService(f, mailer)

	require.NoError(t, svc.ForgotPassword(f.ctx, models.UserTypeTeacher, f.teacher.Email))
	require.Len(t, mailer.links, 1)

	f.clock.Advance(2 * time.Hour)
	err := svc.ResetPassword(f.ctx, models.UserTypeTeacher, resetTokenFrom(t, mailer.links[0]), "new-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f, nil)
	principal := f.adminPrincipal()

	err := svc.ChangePassword(f.ctx, principal, "wrong", "new-password")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = svc.ChangePassword(f.ctx, principal, testPassword, testPassword)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.ChangePassword(f.ctx, principal, testPassword, "new-password"))
	_, err = svc.Login(f.ctx, models.UserTypeAdmin, f.admin.Email, "new-password")
	assert.NoError(t, err)
}
