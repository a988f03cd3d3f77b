package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "sims.test",
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	teacher := &models.Teacher{ID: 7, Email: "teacher@sims.edu", IsActive: true}

	pair, err := svc.GenerateTokenPair(teacher)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.Equal(t, int64(86400), pair.RefreshExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "teacher@sims.edu", claims.Email)
	assert.Equal(t, models.UserTypeTeacher, claims.UserType)
	assert.Equal(t, "sims.test", claims.Issuer)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(&models.Student{ID: 1, Email: "s@sims.edu"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := svc.GenerateTokenPair(&models.AdminUser{ID: 1, Email: "admin@sims.edu"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := newTestJWTService().GenerateTokenPair(&models.AdminUser{ID: 1, Email: "admin@sims.edu"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another", AccessTokenExp: time.Hour, RefreshTokenExp: time.Hour})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "abc.def.ghi", want: "abc.def.ghi"},
		{header: "", wantErr: true},
		{header: "Basic dXNlcjpwYXNz", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("teacher123", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "teacher123"))
	assert.False(t, CheckPassword(hash, "teacher124"))
}
