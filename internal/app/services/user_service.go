package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
)

// MaxPhotoSize caps profile photo uploads
const MaxPhotoSize = 5 << 20

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotoUpload is a profile photo as received from the client
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// UserService handles account administration and the caller's own profile
type UserService struct {
	adminRepo      AdminRepository
	teacherRepo    TeacherRepository
	studentRepo    StudentRepository
	departmentRepo DepartmentRepository
	semesterRepo   SemesterRepository
	fileStore      FileStore
	bcryptCost     int
	logger         zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repos *Repositories, fileStore FileStore, bcryptCost int, logger zerolog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = auth.BcryptCost
	}
	return &UserService{
		adminRepo:      repos.Admins,
		teacherRepo:    repos.Teachers,
		studentRepo:    repos.Students,
		departmentRepo: repos.Departments,
		semesterRepo:   repos.Semesters,
		fileStore:      fileStore,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (s *UserService) hash(password string) (string, error) {
	h, err := auth.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return h, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin creates another admin account
func (s *UserService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*models.AdminUser, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.AdminUser{
		Email:    normalizeEmail(req.Email),
		Password: hash,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("admin_id", admin.ID).Msg("Admin account created")
	return admin, nil
}

// ListAdmins returns every admin account
func (s *UserService) ListAdmins(ctx context.Context) ([]*models.AdminUser, error) {
	return s.adminRepo.List(ctx)
}

// CreateTeacher creates a teacher account
func (s *UserService) CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	teacher := &models.Teacher{
		Email:        normalizeEmail(req.Email),
		Password:     hash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("teacher_id", teacher.ID).Msg("Teacher account created")
	return teacher, nil
}

// GetTeacher retrieves a teacher
func (s *UserService) GetTeacher(ctx context.Context, id int64) (*models.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

// ListTeachers returns a page of teachers
func (s *UserService) ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]*models.Teacher, int64, error) {
	return s.teacherRepo.List(ctx, filter)
}

// UpdateTeacher applies the fields present in req
func (s *UserService) UpdateTeacher(ctx context.Context, id int64, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		teacher.Email = normalizeEmail(*req.Email)
	}
	if req.FullName != nil {
		teacher.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		teacher.Phone = req.Phone
	}
	if req.EmployeeID != nil {
		teacher.EmployeeID = strings.TrimSpace(*req.EmployeeID)
	}
	if req.DepartmentID != nil {
		teacher.DepartmentID = req.DepartmentID
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}
	if err := s.teacherRepo.Update(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

// DeleteTeacher removes a teacher and, through cascades, their assignments
// and attendance entries
func (s *UserService) DeleteTeacher(ctx context.Context, id int64) error {
	return s.teacherRepo.Delete(ctx, id)
}

// CreateStudent creates a student account
func (s *UserService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	student := &models.Student{
		Email:          normalizeEmail(req.Email),
		Password:       hash,
		FullName:       strings.TrimSpace(req.FullName),
		Phone:          req.Phone,
		RollNumber:     strings.TrimSpace(req.RollNumber),
		SemesterID:     req.SemesterID,
		EnrollmentYear: req.EnrollmentYear,
		IsActive:       true,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("student_id", student.ID).Msg("Student account created")
	return student, nil
}

// GetStudent retrieves a student
func (s *UserService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// ListStudents returns a page of students
func (s *UserService) ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	return s.studentRepo.List(ctx, filter)
}

// UpdateStudent applies the fields present in req
func (s *UserService) UpdateStudent(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		student.Email = normalizeEmail(*req.Email)
	}
	if req.FullName != nil {
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.RollNumber != nil {
		student.RollNumber = strings.TrimSpace(*req.RollNumber)
	}
	if req.SemesterID != nil {
		student.SemesterID = req.SemesterID
	}
	if req.EnrollmentYear != nil {
		student.EnrollmentYear = *req.EnrollmentYear
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student together with their attendance and results
func (s *UserService) DeleteStudent(ctx context.Context, id int64) error {
	return s.studentRepo.Delete(ctx, id)
}

// TeacherView converts a teacher with its department name filled in
func (s *UserService) TeacherView(ctx context.Context, t *models.Teacher) dto.TeacherResponse {
	var dept *models.Department
	if t.DepartmentID != nil {
		d, err := s.departmentRepo.GetByID(ctx, *t.DepartmentID)
		if err == nil {
			dept = d
		} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Err(err).Int64("teacher_id", t.ID).Msg("Could not load teacher department")
		}
	}
	return dto.NewTeacherResponse(t, dept)
}

// StudentView converts a student with its semester label filled in
func (s *UserService) StudentView(ctx context.Context, st *models.Student) dto.StudentResponse {
	var sem *models.Semester
	if st.SemesterID != nil {
		found, err := s.semesterRepo.GetByID(ctx, *st.SemesterID)
		if err == nil {
			sem = found
		} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Err(err).Int64("student_id", st.ID).Msg("Could not load student semester")
		}
	}
	return dto.NewStudentResponse(st, sem)
}

// AccountView renders any account with its role-specific response
func (s *UserService) AccountView(ctx context.Context, account models.Account) interface{} {
	switch a := account.(type) {
	case *models.AdminUser:
		return dto.NewAdminResponse(a)
	case *models.Teacher:
		return s.TeacherView(ctx, a)
	case *models.Student:
		return s.StudentView(ctx, a)
	}
	return nil
}

// Profile returns the caller's own account
func (s *UserService) Profile(ctx context.Context, principal auth.Principal) (interface{}, error) {
	switch principal.UserType {
	case models.UserTypeAdmin:
		a, err := s.adminRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		return dto.NewAdminResponse(a), nil
	case models.UserTypeTeacher:
		t, err := s.teacherRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		return s.TeacherView(ctx, t), nil
	case models.UserTypeStudent:
		st, err := s.studentRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		return s.StudentView(ctx, st), nil
	}
	return nil, apperrors.ErrPermissionDenied
}

// UpdatePhoto stores a new profile photo for a teacher or student and
// removes the previous one. Admin accounts have no photo.
func (s *UserService) UpdatePhoto(ctx context.Context, principal auth.Principal, upload PhotoUpload) (string, error) {
	if principal.IsAdmin() {
		return "", apperrors.NewForbiddenError("admin accounts have no profile photo")
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]))
	if !allowedPhotoTypes[contentType] {
		return "", apperrors.NewValidationError("photo must be a JPEG, PNG or WebP image")
	}
	if upload.Size <= 0 || upload.Size > MaxPhotoSize {
		return "", apperrors.NewValidationError(fmt.Sprintf("photo must be between 1 byte and %d bytes", MaxPhotoSize))
	}

	var (
		previous *string
		dir      string
	)
	switch principal.UserType {
	case models.UserTypeTeacher:
		t, err := s.teacherRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return "", err
		}
		previous, dir = t.ProfilePhoto, "profile_photos/teachers"
	default:
		st, err := s.studentRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return "", err
		}
		previous, dir = st.ProfilePhoto, "profile_photos/students"
	}

	url, err := s.fileStore.Save(ctx, dir, upload.Filename, contentType, upload.Content, upload.Size)
	if err != nil {
		return "", fmt.Errorf("error storing photo: %w", err)
	}

	if principal.IsTeacher() {
		err = s.teacherRepo.UpdateProfilePhoto(ctx, principal.UserID, url)
	} else {
		err = s.studentRepo.UpdateProfilePhoto(ctx, principal.UserID, url)
	}
	if err != nil {
		if delErr := s.fileStore.Delete(ctx, url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned photo")
		}
		return "", err
	}

	if previous != nil && *previous != "" {
		if err := s.fileStore.Delete(ctx, *previous); err != nil {
			s.logger.Warn().Err(err).Str("url", *previous).Msg("Failed to remove previous photo")
		}
	}
	return url, nil
}
