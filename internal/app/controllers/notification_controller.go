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
	"github.com/yigit/sims/internal/pkg/helpers"
)

// StreamServer upgrades a request into a live notification stream
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request, recipient models.Recipient) error
}

// NotificationController serves the caller's notification inbox
type NotificationController struct {
	notificationService *services.NotificationService
	streams             StreamServer
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController. A nil
// streams disables the live stream endpoint.
func NewNotificationController(notificationService *services.NotificationService, streams StreamServer, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		streams:             streams,
		logger:              logger,
	}
}

// Stream upgrades to a websocket that receives the caller's new
// notifications as they are created
// @Summary Live notification stream
// @Tags notifications
// @Param access_token query string false "Access token when the Authorization header cannot be set"
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Router /notifications/stream [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}
	if c.streams == nil {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("live notifications are disabled"))
		return
	}
	if err := c.streams.Serve(ctx.Writer, ctx.Request, principal.Recipient()); err != nil {
		c.logger.Debug().Err(err).Int64("user_id", principal.UserID).Msg("Notification stream upgrade failed")
	}
}

// List returns the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} dto.PaginatedResponse
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	unread, err := helpers.QueryBool(ctx, "unread")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	page := helpers.ParsePaginationParams(ctx)

	items, total, err := c.notificationService.List(ctx.Request.Context(), principal.Recipient(), unread != nil && *unread, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewNotificationResponses(items), total, page))
}

// MarkRead marks one of the caller's notifications read
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), id, principal.Recipient()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Notification marked as read"})
}

// MarkAllRead marks every notification of the caller read
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.MarkAllRead(ctx.Request.Context(), principal.Recipient())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// UnreadCount counts the caller's unread notifications
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.CountUnread(ctx.Request.Context(), principal.Recipient())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// Send lets an admin address a notification to any account
func (c *NotificationController) Send(ctx *gin.Context) {
	var req dto.SendNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	n, err := c.notificationService.Send(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewNotificationResponse(n))
}
