package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/helpers"
)

// AcademicController handles the department > course > semester > subject
// hierarchy and teacher assignments
type AcademicController struct {
	academicService *services.AcademicService
	logger          zerolog.Logger
}

// NewAcademicController creates a new AcademicController
func NewAcademicController(academicService *services.AcademicService, logger zerolog.Logger) *AcademicController {
	return &AcademicController{
		academicService: academicService,
		logger:          logger,
	}
}

// CreateDepartment handles department creation
// @Summary Create a new department
// @Tags departments
// @Accept json
// @Produce json
// @Param department body dto.DepartmentRequest true "Department details"
// @Security BearerAuth
// @Success 201 {object} models.Department
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Department code already exists"
// @Router /departments [post]
func (c *AcademicController) CreateDepartment(ctx *gin.Context) {
	var req dto.DepartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	department, err := c.academicService.CreateDepartment(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, department)
}

// GetDepartment handles fetching one department
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} models.Department
// @Failure 404 {object} dto.ErrorResponse
// @Router /departments/{id} [get]
func (c *AcademicController) GetDepartment(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	department, err := c.academicService.GetDepartment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, department)
}

// ListDepartments handles listing all departments
func (c *AcademicController) ListDepartments(ctx *gin.Context) {
	departments, err := c.academicService.ListDepartments(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, departments)
}

// UpdateDepartment handles department updates
func (c *AcademicController) UpdateDepartment(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.DepartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	department, err := c.academicService.UpdateDepartment(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, department)
}

// DeleteDepartment removes a department and everything below it
func (c *AcademicController) DeleteDepartment(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicService.DeleteDepartment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateCourse handles course creation
func (c *AcademicController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.academicService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, course)
}

// GetCourse handles fetching one course
func (c *AcademicController) GetCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.academicService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, course)
}

// ListCourses lists courses, optionally for one department (?department_id=)
func (c *AcademicController) ListCourses(ctx *gin.Context) {
	departmentID, err := helpers.QueryInt64(ctx, "department_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courses, err := c.academicService.ListCourses(ctx.Request.Context(), departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, courses)
}

// UpdateCourse handles course updates
func (c *AcademicController) UpdateCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.academicService.UpdateCourse(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, course)
}

// DeleteCourse handles course deletion
func (c *AcademicController) DeleteCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateSemester handles semester creation
func (c *AcademicController) CreateSemester(ctx *gin.Context) {
	var req dto.SemesterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	semester, err := c.academicService.CreateSemester(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, semester)
}

// GetSemester handles fetching one semester
func (c *AcademicController) GetSemester(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	semester, err := c.academicService.GetSemester(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, semester)
}

// ListSemesters lists semesters, optionally for one course (?course_id=)
func (c *AcademicController) ListSemesters(ctx *gin.Context) {
	courseID, err := helpers.QueryInt64(ctx, "course_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	semesters, err := c.academicService.ListSemesters(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, semesters)
}

// UpdateSemester handles semester updates
func (c *AcademicController) UpdateSemester(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SemesterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	semester, err := c.academicService.UpdateSemester(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, semester)
}

// DeleteSemester handles semester deletion
func (c *AcademicController) DeleteSemester(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicService.DeleteSemester(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateSubject handles subject creation
func (c *AcademicController) CreateSubject(ctx *gin.Context) {
	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	subject, err := c.academicService.CreateSubject(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, subject)
}

// GetSubject handles fetching one subject
func (c *AcademicController) GetSubject(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	subject, err := c.academicService.GetSubject(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, subject)
}

// ListSubjects lists subjects, optionally for one semester (?semester_id=)
func (c *AcademicController) ListSubjects(ctx *gin.Context) {
	semesterID, err := helpers.QueryInt64(ctx, "semester_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	subjects, err := c.academicService.ListSubjects(ctx.Request.Context(), semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, subjects)
}

// MySubjects lists the subjects the calling teacher is assigned to
func (c *AcademicController) MySubjects(ctx *gin.Context) {
	principal, ok := middleware.MustPrincipal(ctx)
	if !ok {
		return
	}

	subjects, err := c.academicService.ListTeacherSubjects(ctx.Request.Context(), principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, subjects)
}

// UpdateSubject handles subject updates
func (c *AcademicController) UpdateSubject(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	subject, err := c.academicService.UpdateSubject(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, subject)
}

// DeleteSubject handles subject deletion
func (c *AcademicController) DeleteSubject(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicService.DeleteSubject(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AssignTeacher assigns a teacher to a subject
// @Summary Assign teacher to subject
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body dto.AssignmentRequest true "Teacher and subject"
// @Security BearerAuth
// @Success 201 {object} models.TeacherSubjectAssignment
// @Failure 404 {object} dto.ErrorResponse "Teacher or subject not found"
// @Failure 409 {object} dto.ErrorResponse "Already assigned"
// @Router /assignments [post]
func (c *AcademicController) AssignTeacher(ctx *gin.Context) {
	var req dto.AssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	assignment, err := c.academicService.AssignTeacher(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, assignment)
}

// ListAssignments lists assignments filtered by ?teacher_id= and ?subject_id=
func (c *AcademicController) ListAssignments(ctx *gin.Context) {
	var filter models.AssignmentFilter
	var err error
	if filter.TeacherID, err = helpers.QueryInt64(ctx, "teacher_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if filter.SubjectID, err = helpers.QueryInt64(ctx, "subject_id"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	assignments, err := c.academicService.ListAssignments(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assignments)
}

// Unassign removes an assignment
func (c *AcademicController) Unassign(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.academicService.Unassign(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
