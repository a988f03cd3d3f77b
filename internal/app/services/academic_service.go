package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/helpers"
)

// AcademicService manages the department, course, semester and subject
// hierarchy and teacher assignments. Referential checks are left to the
// repositories, which report a missing parent as its not-found error.
type AcademicService struct {
	departmentRepo DepartmentRepository
	courseRepo     CourseRepository
	semesterRepo   SemesterRepository
	subjectRepo    SubjectRepository
	assignmentRepo AssignmentRepository
	teacherRepo    TeacherRepository
	clock          helpers.Clock
	logger         zerolog.Logger
}

// NewAcademicService creates a new AcademicService
func NewAcademicService(repos *Repositories, clock helpers.Clock, logger zerolog.Logger) *AcademicService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &AcademicService{
		departmentRepo: repos.Departments,
		courseRepo:     repos.Courses,
		semesterRepo:   repos.Semesters,
		subjectRepo:    repos.Subjects,
		assignmentRepo: repos.Assignments,
		teacherRepo:    repos.Teachers,
		clock:          clock,
		logger:         logger,
	}
}

// CreateDepartment creates a new department
func (s *AcademicService) CreateDepartment(ctx context.Context, req dto.DepartmentRequest) (*models.Department, error) {
	department := &models.Department{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// GetDepartment retrieves a department by ID
func (s *AcademicService) GetDepartment(ctx context.Context, id int64) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

// ListDepartments retrieves all departments
func (s *AcademicService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return s.departmentRepo.GetAll(ctx)
}

// UpdateDepartment replaces a department's name and code
func (s *AcademicService) UpdateDepartment(ctx context.Context, id int64, req dto.DepartmentRequest) (*models.Department, error) {
	department := &models.Department{
		ID:   id,
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	}
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment deletes a department and its courses
func (s *AcademicService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("department_id", id).Msg("Department deleted")
	return nil
}

// CreateCourse creates a course in a department
func (s *AcademicService) CreateCourse(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	course := &models.Course{
		DepartmentID:  req.DepartmentID,
		Name:          strings.TrimSpace(req.Name),
		DurationYears: req.DurationYears,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, course.ID)
}

// GetCourse retrieves a course
func (s *AcademicService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// ListCourses lists courses, optionally of one department
func (s *AcademicService) ListCourses(ctx context.Context, departmentID int64) ([]*models.Course, error) {
	if departmentID != 0 {
		if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
			return nil, err
		}
	}
	return s.courseRepo.List(ctx, departmentID)
}

// UpdateCourse replaces a course
func (s *AcademicService) UpdateCourse(ctx context.Context, id int64, req dto.CourseRequest) (*models.Course, error) {
	course := &models.Course{
		ID:            id,
		DepartmentID:  req.DepartmentID,
		Name:          strings.TrimSpace(req.Name),
		DurationYears: req.DurationYears,
	}
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, id)
}

// DeleteCourse deletes a course and its semesters
func (s *AcademicService) DeleteCourse(ctx context.Context, id int64) error {
	return s.courseRepo.Delete(ctx, id)
}

// CreateSemester creates a semester of a course
func (s *AcademicService) CreateSemester(ctx context.Context, req dto.SemesterRequest) (*models.Semester, error) {
	semester := &models.Semester{
		CourseID:       req.CourseID,
		SemesterNumber: req.SemesterNumber,
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
	}
	if err := s.semesterRepo.Create(ctx, semester); err != nil {
		return nil, err
	}
	return s.semesterRepo.GetByID(ctx, semester.ID)
}

// GetSemester retrieves a semester with its course
func (s *AcademicService) GetSemester(ctx context.Context, id int64) (*models.Semester, error) {
	return s.semesterRepo.GetByID(ctx, id)
}

// ListSemesters lists semesters, optionally of one course
func (s *AcademicService) ListSemesters(ctx context.Context, courseID int64) ([]*models.Semester, error) {
	if courseID != 0 {
		if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
			return nil, err
		}
	}
	return s.semesterRepo.List(ctx, courseID)
}

// UpdateSemester replaces a semester
func (s *AcademicService) UpdateSemester(ctx context.Context, id int64, req dto.SemesterRequest) (*models.Semester, error) {
	semester := &models.Semester{
		ID:             id,
		CourseID:       req.CourseID,
		SemesterNumber: req.SemesterNumber,
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
	}
	if err := s.semesterRepo.Update(ctx, semester); err != nil {
		return nil, err
	}
	return s.semesterRepo.GetByID(ctx, id)
}

// DeleteSemester deletes a semester and its subjects; enrolled students
// are detached
func (s *AcademicService) DeleteSemester(ctx context.Context, id int64) error {
	return s.semesterRepo.Delete(ctx, id)
}

// CreateSubject creates a subject in a semester
func (s *AcademicService) CreateSubject(ctx context.Context, req dto.SubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{
		SemesterID: req.SemesterID,
		Name:       strings.TrimSpace(req.Name),
		Code:       strings.TrimSpace(req.Code),
		Credits:    req.Credits,
	}
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// GetSubject retrieves a subject
func (s *AcademicService) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	return s.subjectRepo.GetByID(ctx, id)
}

// ListSubjects lists subjects, optionally of one semester
func (s *AcademicService) ListSubjects(ctx context.Context, semesterID int64) ([]*models.Subject, error) {
	if semesterID != 0 {
		if _, err := s.semesterRepo.GetByID(ctx, semesterID); err != nil {
			return nil, err
		}
	}
	return s.subjectRepo.List(ctx, semesterID)
}

// ListTeacherSubjects lists the subjects a teacher is assigned to
func (s *AcademicService) ListTeacherSubjects(ctx context.Context, teacherID int64) ([]*models.Subject, error) {
	if _, err := s.teacherRepo.GetByID(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.subjectRepo.ListByTeacher(ctx, teacherID)
}

// UpdateSubject replaces a subject
func (s *AcademicService) UpdateSubject(ctx context.Context, id int64, req dto.SubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{
		ID:         id,
		SemesterID: req.SemesterID,
		Name:       strings.TrimSpace(req.Name),
		Code:       strings.TrimSpace(req.Code),
		Credits:    req.Credits,
	}
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		return nil, err
	}
	return s.subjectRepo.GetByID(ctx, id)
}

// DeleteSubject deletes a subject with its assignments, attendance and results
func (s *AcademicService) DeleteSubject(ctx context.Context, id int64) error {
	return s.subjectRepo.Delete(ctx, id)
}

// AssignTeacher assigns a teacher to a subject as of today
func (s *AcademicService) AssignTeacher(ctx context.Context, req dto.AssignmentRequest) (*models.TeacherSubjectAssignment, error) {
	assignment := &models.TeacherSubjectAssignment{
		TeacherID:    req.TeacherID,
		SubjectID:    req.SubjectID,
		AssignedDate: helpers.DateOnly(s.clock()),
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("teacher_id", req.TeacherID).
		Int64("subject_id", req.SubjectID).
		Msg("Teacher assigned to subject")
	return assignment, nil
}

// ListAssignments lists assignments, optionally filtered
func (s *AcademicService) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]*models.TeacherSubjectAssignment, error) {
	return s.assignmentRepo.List(ctx, filter)
}

// Unassign removes an assignment
func (s *AcademicService) Unassign(ctx context.Context, id int64) error {
	return s.assignmentRepo.Delete(ctx, id)
}
