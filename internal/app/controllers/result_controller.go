package controllers

import (
	"fmt"
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

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportSize   = 10 << 20
)

// ResultController handles marks entry, approval and publication
type ResultController struct {
	resultService *services.ResultService
	logger        zerolog.Logger
}

// NewResultController creates a new ResultController
func NewResultController(resultService *services.ResultService, logger zerolog.Logger) *ResultController {
	return &ResultController{
		resultService: resultService,
		logger:        logger,
	}
}

// Save enters or updates marks for one student in one subject
// @Summary Save result
// @Description Creates the result or replaces its marks; grade and percentage are derived
// @Tags results
// @Accept json
// @Produce json
// @Param result body dto.SaveResultRequest true "Marks"
// @Security BearerAuth
// @Success 200 {object} dto.ResultResponse "Updated"
// @Success 201 {object} dto.ResultResponse "Created"
// @Failure 400 {object} dto.ErrorResponse "Marks out of range"
// @Failure 403 {object} dto.ErrorResponse "Not assigned or result already published"
// @Router /results [put]
func (c *ResultController) Save(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	var req dto.SaveResultRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, created, err := c.resultService.Save(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.NewResultResponse(result))
}

// List returns results filtered by ?student_id=, ?subject_id= and ?published=
func (c *ResultController) List(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	filter := models.ResultFilter{Page: helpers.ParsePaginationParams(ctx)}
	var err error
	if filter.StudentID, err = helpers.QueryInt64(ctx, "student_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.SubjectID, err = helpers.QueryInt64(ctx, "subject_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.IsPublished, err = helpers.QueryBool(ctx, "published"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	results, total, err := c.resultService.List(ctx.Request.Context(), principal, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewResultResponses(results), total, filter.Page))
}

// ListOwn returns the calling student's published results
func (c *ResultController) ListOwn(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	page := helpers.ParsePaginationParams(ctx)
	results, total, err := c.resultService.ListOwn(ctx.Request.Context(), principal, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(dto.NewResultResponses(results), total, page))
}

// Get returns one result
func (c *ResultController) Get(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.resultService.Get(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResultResponse(result))
}

// Approve marks a result as approved by the calling admin
func (c *ResultController) Approve(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.resultService.Approve(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResultResponse(result))
}

// Publish makes an approved result visible to its student
func (c *ResultController) Publish(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.resultService.Publish(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResultResponse(result))
}

// Unpublish hides a result from its student again
func (c *ResultController) Unpublish(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.resultService.Unpublish(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewResultResponse(result))
}

func requiredSubjectID(ctx *gin.Context) (int64, error) {
	subjectID, err := helpers.QueryInt64(ctx, "subject_id")
	if err != nil {
		return 0, err
	}
	if subjectID == 0 {
		return 0, apperrors.NewValidationError("subject_id is required")
	}
	return subjectID, nil
}

// Export downloads every result of a subject as an XLSX workbook
// @Summary Export results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param subject_id query int true "Subject ID"
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /results/export [get]
func (c *ResultController) Export(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	subjectID, err := requiredSubjectID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	data, filename, err := c.resultService.Export(ctx.Request.Context(), principal, subjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// Import upserts marks from an uploaded workbook (multipart field "file")
// and reports per-row failures
func (c *ResultController) Import(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	subjectID, err := requiredSubjectID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxImportSize)
	header, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("multipart field 'file' is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded workbook")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	report, err := c.resultService.Import(ctx.Request.Context(), principal, subjectID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}
