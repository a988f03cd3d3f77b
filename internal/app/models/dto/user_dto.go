package dto

import (
	"time"

	"github.com/yigit/sims/internal/app/models"
)

// AdminResponse is the public view of an admin account
type AdminResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TeacherResponse is the public view of a teacher account
type TeacherResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Phone          *string   `json:"phone,omitempty"`
	EmployeeID     string    `json:"employee_id"`
	DepartmentID   *int64    `json:"department_id,omitempty"`
	DepartmentName string    `json:"department_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	ProfilePhoto   *string   `json:"profile_photo,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StudentResponse is the public view of a student account
type StudentResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Phone          *string   `json:"phone,omitempty"`
	RollNumber     string    `json:"roll_number"`
	SemesterID     *int64    `json:"semester_id,omitempty"`
	SemesterInfo   string    `json:"semester_info,omitempty"`
	EnrollmentYear int       `json:"enrollment_year"`
	IsActive       bool      `json:"is_active"`
	ProfilePhoto   *string   `json:"profile_photo,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAdminResponse converts a model.AdminUser to an AdminResponse
func NewAdminResponse(a *models.AdminUser) AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Phone:     a.Phone,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// NewTeacherResponse converts a teacher; dept may be nil.
func NewTeacherResponse(t *models.Teacher, dept *models.Department) TeacherResponse {
	resp := TeacherResponse{
		ID:           t.ID,
		Email:        t.Email,
		FullName:     t.FullName,
		Phone:        t.Phone,
		EmployeeID:   t.EmployeeID,
		DepartmentID: t.DepartmentID,
		IsActive:     t.IsActive,
		ProfilePhoto: t.ProfilePhoto,
		CreatedAt:    t.CreatedAt,
	}
	if dept != nil {
		resp.DepartmentName = dept.Name
	}
	return resp
}

// NewStudentResponse converts a student; sem may be nil.
func NewStudentResponse(s *models.Student, sem *models.Semester) StudentResponse {
	resp := StudentResponse{
		ID:             s.ID,
		Email:          s.Email,
		FullName:       s.FullName,
		Phone:          s.Phone,
		RollNumber:     s.RollNumber,
		SemesterID:     s.SemesterID,
		EnrollmentYear: s.EnrollmentYear,
		IsActive:       s.IsActive,
		ProfilePhoto:   s.ProfilePhoto,
		CreatedAt:      s.CreatedAt,
	}
	if sem != nil {
		resp.SemesterInfo = sem.Label()
	}
	return resp
}

// CreateAdminRequest creates another admin account
type CreateAdminRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	FullName string  `json:"full_name" binding:"required,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=15"`
}

// CreateTeacherRequest creates a teacher account
type CreateTeacherRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6,max=72"`
	FullName     string  `json:"full_name" binding:"required,max=200"`
	Phone        *string `json:"phone" binding:"omitempty,max=15"`
	EmployeeID   string  `json:"employee_id" binding:"required,max=50"`
	DepartmentID *int64  `json:"department_id" binding:"omitempty,min=1"`
}

// UpdateTeacherRequest changes only the fields that are present
type UpdateTeacherRequest struct {
	Email        *string `json:"email" binding:"omitempty,email"`
	FullName     *string `json:"full_name" binding:"omitempty,max=200"`
	Phone        *string `json:"phone" binding:"omitempty,max=15"`
	EmployeeID   *string `json:"employee_id" binding:"omitempty,max=50"`
	DepartmentID *int64  `json:"department_id" binding:"omitempty,min=1"`
	IsActive     *bool   `json:"is_active"`
}

// CreateStudentRequest creates a student account
type CreateStudentRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=6,max=72"`
	FullName       string  `json:"full_name" binding:"required,max=200"`
	Phone          *string `json:"phone" binding:"omitempty,max=15"`
	RollNumber     string  `json:"roll_number" binding:"required,max=50"`
	SemesterID     *int64  `json:"semester_id" binding:"omitempty,min=1"`
	EnrollmentYear int     `json:"enrollment_year" binding:"required,min=1900,max=2200"`
}

// UpdateStudentRequest changes only the fields that are present
type UpdateStudentRequest struct {
	Email          *string `json:"email" binding:"omitempty,email"`
	FullName       *string `json:"full_name" binding:"omitempty,max=200"`
	Phone          *string `json:"phone" binding:"omitempty,max=15"`
	RollNumber     *string `json:"roll_number" binding:"omitempty,max=50"`
	SemesterID     *int64  `json:"semester_id" binding:"omitempty,min=1"`
	EnrollmentYear *int    `json:"enrollment_year" binding:"omitempty,min=1900,max=2200"`
	IsActive       *bool   `json:"is_active"`
}
