// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	userService *services.UserService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, userService *services.UserService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// roleParam resolves the :role path segment (admin, teacher or student)
func roleParam(ctx *gin.Context) (models.UserType, bool) {
	role, ok := models.ParseUserType(ctx.Param("role"))
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound, "Unknown account type"))
		return "", false
	}
	return role, true
}

func (c *AuthController) loginResponse(ctx *gin.Context, result *services.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		AccessToken:      result.Tokens.AccessToken,
		RefreshToken:     result.Tokens.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        result.Tokens.ExpiresIn,
		RefreshExpiresIn: result.Tokens.RefreshExpiresIn,
		UserType:         result.Account.Type(),
		User:             c.userService.AccountView(ctx.Request.Context(), result.Account),
	}
}

// Login handles login for one account type
// @Summary Log in as admin, teacher or student
// @Description Checks the credentials against the account table of the role in the path
// @Tags auth
// @Accept json
// @Produce json
// @Param role path string true "admin, teacher or student"
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/{role}/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	role, ok := roleParam(ctx)
	if !ok {
		return
	}

	var req dto.LoginRequest
	if !middleware.BindLogin(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), role, req.Email, req.Password)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: dto.MessageInvalidCredentials})
			return
		}
		c.logger.Error().Err(err).Str("role", string(role)).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c.loginResponse(ctx, result))
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c.loginResponse(ctx, result))
}

// ForgotPassword always answers 200 so callers cannot probe for accounts
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	role, ok := roleParam(ctx)
	if !ok {
		return
	}

	var req dto.ForgotPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ForgotPassword(ctx.Request.Context(), role, req.Email); err != nil {
		c.logger.Error().Err(err).Str("role", string(role)).Msg("Failed to process password reset request")
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: forgotPasswordMessage})
}

// ResetPassword completes a reset with the token from the e-mail
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	role, ok := roleParam(ctx)
	if !ok {
		return
	}

	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), role, req.Token, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password has been reset"})
}
