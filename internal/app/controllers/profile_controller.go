package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// ProfileController serves the caller's own account
type ProfileController struct {
	authService *services.AuthService
	userService *services.UserService
	logger      zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(authService *services.AuthService, userService *services.UserService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// Me returns the authenticated account
// @Summary Current account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StudentResponse "Shape depends on the account type"
// @Router /me [get]
func (c *ProfileController) Me(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	view, err := c.userService.Profile(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user_type": principal.UserType, "user": view})
}

// ChangePassword replaces the caller's password
func (c *ProfileController) ChangePassword(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), principal, req.CurrentPassword, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password changed"})
}

// UpdatePhoto stores a new profile photo from the multipart field "photo"
func (c *ProfileController) UpdatePhoto(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, services.MaxPhotoSize+1<<20)
	header, err := ctx.FormFile("photo")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("multipart field 'photo' is required"))
		return
	}
	if header.Size > services.MaxPhotoSize {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(fmt.Sprintf("photo must not exceed %d bytes", services.MaxPhotoSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded photo")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.userService.UpdatePhoto(ctx.Request.Context(), principal, services.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profile_photo": url})
}
