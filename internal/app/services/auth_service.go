package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/email"
	"github.com/yigit/sims/internal/pkg/helpers"
)

const resetTokenLength = 48

// AuthSettings tunes AuthService
type AuthSettings struct {
	ResetTokenExpiration time.Duration
	// FrontendURL is where the reset link in the e-mail points
	FrontendURL string
	BcryptCost  int
	Clock       helpers.Clock
}

// LoginResult is what a successful login or refresh yields
type LoginResult struct {
	Tokens  *auth.TokenPair
	Account models.Account
}

// AuthService handles authentication operations
type AuthService struct {
	sources     map[models.UserType]CredentialSource
	resetTokens PasswordResetTokenRepository
	jwtService  *auth.JWTService
	mailer      Mailer
	settings    AuthSettings
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	sources map[models.UserType]CredentialSource,
	resetTokens PasswordResetTokenRepository,
	jwtService *auth.JWTService,
	mailer Mailer,
	settings AuthSettings,
	logger zerolog.Logger,
) *AuthService {
	if settings.Clock == nil {
		settings.Clock = helpers.SystemClock
	}
	if settings.BcryptCost == 0 {
		settings.BcryptCost = auth.BcryptCost
	}
	if settings.ResetTokenExpiration == 0 {
		settings.ResetTokenExpiration = time.Hour
	}
	return &AuthService{
		sources:     sources,
		resetTokens: resetTokens,
		jwtService:  jwtService,
		mailer:      mailer,
		settings:    settings,
		logger:      logger,
	}
}

func (s *AuthService) source(role models.UserType) (CredentialSource, error) {
	src, ok := s.sources[role]
	if !ok {
		return nil, fmt.Errorf("no credential source for role %q", role)
	}
	return src, nil
}

// Login verifies email and password against the role's account table. An
// unknown email, an inactive account and a wrong password all yield
// apperrors.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, role models.UserType, emailAddr, password string) (*LoginResult, error) {
	src, err := s.source(role)
	if err != nil {
		return nil, err
	}

	account, err := src.FindByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("error looking up %s account: %w", role.Slug(), err)
		}
		auth.BurnPasswordCheckWithCost(password, s.settings.BcryptCost)
		s.logger.Debug().Str("role", string(role)).Msg("Login failed: unknown email")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(account.PasswordHash(), password) {
		s.logger.Debug().Str("role", string(role)).Int64("user_id", account.AccountID()).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	// checked after the password so an inactive account costs the same
	if !account.Active() {
		s.logger.Info().Str("role", string(role)).Int64("user_id", account.AccountID()).Msg("Login refused: account inactive")
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	s.logger.Info().Str("role", string(role)).Int64("user_id", account.AccountID()).Msg("User logged in")
	return &LoginResult{Tokens: tokens, Account: account}, nil
}

// Refresh exchanges a refresh token for a new token pair. The account must
// still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	src, err := s.source(claims.UserType)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	account, err := src.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}
	if !account.Active() {
		return nil, apperrors.ErrTokenInvalid
	}

	tokens, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	return &LoginResult{Tokens: tokens, Account: account}, nil
}

// ForgotPassword issues a reset token for the role's account with that email
// and mails a link to it. Unknown or inactive accounts are silently ignored
// so the response never reveals whether an address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, role models.UserType, emailAddr string) error {
	src, err := s.source(role)
	if err != nil {
		return err
	}

	account, err := src.FindByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Str("role", string(role)).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("error looking up %s account: %w", role.Slug(), err)
	}
	if !account.Active() {
		s.logger.Info().Str("role", string(role)).Int64("user_id", account.AccountID()).Msg("Password reset requested for inactive account")
		return nil
	}

	value, err := email.GenerateToken(resetTokenLength)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}
	token := &models.PasswordResetToken{
		Email:     account.AccountEmail(),
		UserType:  role,
		Token:     value,
		ExpiresAt: s.settings.Clock().Add(s.settings.ResetTokenExpiration),
	}
	if err := s.resetTokens.Create(ctx, token); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	link := s.resetURL(role, value)
	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(account.AccountEmail(), displayName(account), link); err != nil {
			s.logger.Error().Err(err).Int64("user_id", account.AccountID()).Msg("Failed to send password reset email")
		}
	}
	return nil
}

func (s *AuthService) resetURL(role models.UserType, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("role", role.Slug())
	return strings.TrimRight(s.settings.FrontendURL, "/") + "/reset-password?" + q.Encode()
}

// ResetPassword sets a new password using a token issued for role. The token
// is claimed before the password changes so it can only ever be used once.
func (s *AuthService) ResetPassword(ctx context.Context, role models.UserType, tokenValue, newPassword string) error {
	src, err := s.source(role)
	if err != nil {
		return err
	}

	token, err := s.resetTokens.GetByToken(ctx, strings.TrimSpace(tokenValue))
	if err != nil {
		return err
	}
	if token.UserType != role {
		return apperrors.ErrInvalidPasswordResetToken
	}
	if token.IsUsed {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if !token.Usable(s.settings.Clock()) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	account, err := src.FindByEmail(ctx, token.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return fmt.Errorf("error looking up account: %w", err)
	}

	hash, err := auth.HashPasswordWithCost(newPassword, s.settings.BcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.resetTokens.MarkUsed(ctx, token.ID); err != nil {
		return err
	}
	if err := src.SetPassword(ctx, account.AccountID(), hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	s.logger.Info().Str("role", string(role)).Int64("user_id", account.AccountID()).Msg("Password reset completed")
	return nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, principal auth.Principal, currentPassword, newPassword string) error {
	src, err := s.source(principal.UserType)
	if err != nil {
		return err
	}
	account, err := src.FindByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(account.PasswordHash(), currentPassword) {
		return apperrors.NewValidationError("current password is incorrect")
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("new password must differ from the current one")
	}

	hash, err := auth.HashPasswordWithCost(newPassword, s.settings.BcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := src.SetPassword(ctx, account.AccountID(), hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}
