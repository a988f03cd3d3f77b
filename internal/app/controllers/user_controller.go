package controllers

import (
	"net/http"
	"strconv"
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

// UserController handles account administration
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// CreateAdmin handles admin account creation
func (c *UserController) CreateAdmin(ctx *gin.Context) {
	var req dto.CreateAdminRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	admin, err := c.userService.CreateAdmin(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("admin_id", admin.ID).Msg("Admin account created")
	ctx.JSON(http.StatusCreated, dto.NewAdminResponse(admin))
}

// ListAdmins lists admin accounts
func (c *UserController) ListAdmins(ctx *gin.Context) {
	admins, err := c.userService.ListAdmins(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.AdminResponse, 0, len(admins))
	for _, a := range admins {
		items = append(items, dto.NewAdminResponse(a))
	}
	ctx.JSON(http.StatusOK, items)
}

// CreateTeacher handles teacher account creation
// @Summary Create teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Param teacher body dto.CreateTeacherRequest true "Teacher details"
// @Security BearerAuth
// @Success 201 {object} dto.TeacherResponse
// @Failure 409 {object} dto.ErrorResponse "Email or employee ID already in use"
// @Router /teachers [post]
func (c *UserController) CreateTeacher(ctx *gin.Context) {
	var req dto.CreateTeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	teacher, err := c.userService.CreateTeacher(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, c.userService.TeacherView(ctx.Request.Context(), teacher))
}

// GetTeacher handles fetching one teacher
func (c *UserController) GetTeacher(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	teacher, err := c.userService.GetTeacher(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.userService.TeacherView(ctx.Request.Context(), teacher))
}

// ListTeachers lists teachers filtered by ?department_id=, ?is_active= and ?search=
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Param department_id query int false "Department ID"
// @Param is_active query bool false "Active flag"
// @Param search query string false "Name, email or employee ID fragment"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} dto.PaginatedResponse
// @Router /teachers [get]
func (c *UserController) ListTeachers(ctx *gin.Context) {
	filter := models.TeacherFilter{
		Search: strings.TrimSpace(ctx.Query("search")),
		Page:   helpers.ParsePaginationParams(ctx),
	}
	var err error
	if filter.DepartmentID, err = helpers.QueryInt64(ctx, "department_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.IsActive, err = helpers.QueryBool(ctx, "is_active"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	teachers, total, err := c.userService.ListTeachers(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		items = append(items, c.userService.TeacherView(ctx.Request.Context(), t))
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(items, total, filter.Page))
}

// UpdateTeacher applies a partial update; is_active toggles the account
func (c *UserController) UpdateTeacher(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateTeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	teacher, err := c.userService.UpdateTeacher(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.userService.TeacherView(ctx.Request.Context(), teacher))
}

// DeleteTeacher handles teacher deletion
func (c *UserController) DeleteTeacher(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.userService.DeleteTeacher(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateStudent handles student account creation
func (c *UserController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.userService.CreateStudent(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, c.userService.StudentView(ctx.Request.Context(), student))
}

// GetStudent handles fetching one student
func (c *UserController) GetStudent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.userService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.userService.StudentView(ctx.Request.Context(), student))
}

// ListStudents lists students filtered by ?semester_id=, ?enrollment_year=,
// ?is_active= and ?search=
func (c *UserController) ListStudents(ctx *gin.Context) {
	filter := models.StudentFilter{
		Search: strings.TrimSpace(ctx.Query("search")),
		Page:   helpers.ParsePaginationParams(ctx),
	}
	var err error
	if filter.SemesterID, err = helpers.QueryInt64(ctx, "semester_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.IsActive, err = helpers.QueryBool(ctx, "is_active"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if raw := ctx.Query("enrollment_year"); raw != "" {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("enrollment_year must be a year"))
			return
		}
		filter.EnrollmentYear = year
	}

	students, total, err := c.userService.ListStudents(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, st := range students {
		items = append(items, c.userService.StudentView(ctx.Request.Context(), st))
	}
	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(items, total, filter.Page))
}

// UpdateStudent applies a partial update; is_active toggles the account
func (c *UserController) UpdateStudent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.userService.UpdateStudent(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.userService.StudentView(ctx.Request.Context(), student))
}

// DeleteStudent removes a student with their attendance and results
func (c *UserController) DeleteStudent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.userService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
