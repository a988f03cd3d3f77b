package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/helpers"
)

// CommunicationController handles events and announcements
type CommunicationController struct {
	communicationService *services.CommunicationService
	logger               zerolog.Logger
}

// NewCommunicationController creates a new CommunicationController
func NewCommunicationController(communicationService *services.CommunicationService, logger zerolog.Logger) *CommunicationController {
	return &CommunicationController{
		communicationService: communicationService,
		logger:               logger,
	}
}

// CreateEvent handles event creation
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.EventRequest true "Event"
// @Security BearerAuth
// @Success 201 {object} dto.EventResponse
// @Router /events [post]
func (c *CommunicationController) CreateEvent(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.communicationService.CreateEvent(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewEventResponse(event))
}

// GetEvent returns one event the caller may see
func (c *CommunicationController) GetEvent(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.communicationService.GetEvent(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewEventResponse(event))
}

// ListEvents lists events visible to the caller, filtered by ?category=,
// ?date_from= and ?date_to=
func (c *CommunicationController) ListEvents(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	filter := models.EventFilter{Page: helpers.ParsePaginationParams(ctx)}
	if raw := strings.ToUpper(ctx.Query("category")); raw != "" {
		filter.Category = models.EventCategory(raw)
		if !filter.Category.Valid() {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("unknown event category"))
			return
		}
	}
	var err error
	if filter.DateFrom, err = helpers.QueryDate(ctx, "date_from"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.DateTo, err = helpers.QueryDate(ctx, "date_to"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	events, total, err := c.communicationService.ListEvents(ctx.Request.Context(), principal, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewEventResponses(events), total, filter.Page))
}

// UpdateEvent replaces an event
func (c *CommunicationController) UpdateEvent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.communicationService.UpdateEvent(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewEventResponse(event))
}

// DeleteEvent handles event deletion
func (c *CommunicationController) DeleteEvent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.communicationService.DeleteEvent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateAnnouncement handles announcement creation
func (c *CommunicationController) CreateAnnouncement(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.AnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	announcement, err := c.communicationService.CreateAnnouncement(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAnnouncementResponse(announcement))
}

// GetAnnouncement returns one announcement the caller may see
func (c *CommunicationController) GetAnnouncement(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	announcement, err := c.communicationService.GetAnnouncement(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAnnouncementResponse(announcement))
}

// ListAnnouncements lists announcements visible to the caller; pinned first
func (c *CommunicationController) ListAnnouncements(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	filter := models.AnnouncementFilter{Page: helpers.ParsePaginationParams(ctx)}
	if raw := strings.ToUpper(ctx.Query("type")); raw != "" {
		filter.Type = models.AnnouncementType(raw)
		if !filter.Type.Valid() {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("unknown announcement type"))
			return
		}
	}

	announcements, total, err := c.communicationService.ListAnnouncements(ctx.Request.Context(), principal, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewAnnouncementResponses(announcements), total, filter.Page))
}

// UpdateAnnouncement replaces an announcement
func (c *CommunicationController) UpdateAnnouncement(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.AnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	announcement, err := c.communicationService.UpdateAnnouncement(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAnnouncementResponse(announcement))
}

// DeleteAnnouncement handles announcement deletion
func (c *CommunicationController) DeleteAnnouncement(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.communicationService.DeleteAnnouncement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
