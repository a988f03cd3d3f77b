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

// AttendanceController handles attendance marking and correction
type AttendanceController struct {
	attendanceService *services.AttendanceService
	logger            zerolog.Logger
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService *services.AttendanceService, logger zerolog.Logger) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		logger:            logger,
	}
}

// Mark records one student at one lecture
// @Summary Mark attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Param attendance body dto.MarkAttendanceRequest true "Attendance record"
// @Security BearerAuth
// @Success 201 {object} dto.AttendanceResponse
// @Failure 403 {object} dto.ErrorResponse "Not assigned to the subject"
// @Failure 409 {object} dto.ErrorResponse "Already marked for this lecture"
// @Router /attendance [post]
func (c *AttendanceController) Mark(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.attendanceService.Mark(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAttendanceResponse(record))
}

// MarkBulk records a whole lecture; either every row is stored or none
func (c *AttendanceController) MarkBulk(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.BulkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	records, err := c.attendanceService.MarkBulk(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAttendanceResponses(records))
}

func attendanceFilter(ctx *gin.Context) (models.AttendanceFilter, error) {
	filter := models.AttendanceFilter{Page: helpers.ParsePaginationParams(ctx)}
	var err error
	if filter.StudentID, err = helpers.QueryInt64(ctx, "student_id"); err != nil {
		return filter, err
	}
	if filter.SubjectID, err = helpers.QueryInt64(ctx, "subject_id"); err != nil {
		return filter, err
	}
	if filter.DateFrom, err = helpers.QueryDate(ctx, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = helpers.QueryDate(ctx, "date_to"); err != nil {
		return filter, err
	}
	if raw := strings.ToUpper(ctx.Query("status")); raw != "" {
		filter.Status = models.AttendanceStatus(raw)
		if !filter.Status.Valid() {
			return filter, apperrors.NewValidationError("status must be PRESENT or ABSENT")
		}
	}
	return filter, nil
}

// List returns attendance records visible to the caller
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Param student_id query int false "Student ID"
// @Param subject_id query int false "Subject ID"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param status query string false "PRESENT or ABSENT"
// @Security BearerAuth
// @Success 200 {object} dto.PaginatedResponse
// @Router /attendance [get]
func (c *AttendanceController) List(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	filter, err := attendanceFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	records, total, err := c.attendanceService.List(ctx.Request.Context(), principal, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewAttendanceResponses(records), total, filter.Page))
}

// ListOwn returns the calling student's records
func (c *AttendanceController) ListOwn(ctx *gin.Context) {
	c.List(ctx)
}

// Update corrects the status of a record inside its edit window
func (c *AttendanceController) Update(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.attendanceService.Update(ctx.Request.Context(), principal, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAttendanceResponse(record))
}

// CheckEditability re-evaluates the edit window and persists a closed one,
// which is why it is a POST
func (c *AttendanceController) CheckEditability(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	record, err := c.attendanceService.CheckEditability(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.EditabilityResponse{
		ID:            record.ID,
		IsEditable:    record.IsEditable,
		EditableUntil: record.EditDeadline(),
	})
}

// StudentSummary aggregates one student's attendance
func (c *AttendanceController) StudentSummary(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	summary, err := c.attendanceService.Summary(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// MySummary aggregates the calling student's attendance
func (c *AttendanceController) MySummary(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	summary, err := c.attendanceService.Summary(ctx.Request.Context(), principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
