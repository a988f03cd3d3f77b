package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

var courseSelect = psql.Select(
	"c.id", "c.department_id", "c.name", "c.duration_years", "c.created_at", "c.updated_at",
	"d.id", "d.name", "d.code", "d.created_at", "d.updated_at",
).From("courses c").Join("departments d ON d.id = c.department_id")

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	var d models.Department
	if err := row.Scan(
		&c.ID, &c.DepartmentID, &c.Name, &c.DurationYears, &c.CreatedAt, &c.UpdatedAt,
		&d.ID, &d.Name, &d.Code, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Department = &d
	return &c, nil
}

// Create inserts a course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO courses (department_id, name, duration_years)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		course.DepartmentID, course.Name, course.DurationYears,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByID retrieves a course with its department
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sqlStr, args, err := courseSelect.Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course query: %w", err)
	}
	course, err := scanCourse(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// List returns the courses of a department, or all courses for departmentID 0
func (r *CourseRepository) List(ctx context.Context, departmentID int64) ([]*models.Course, error) {
	q := courseSelect.OrderBy("c.name", "c.id")
	if departmentID != 0 {
		q = q.Where(squirrel.Eq{"c.department_id": departmentID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Update modifies a course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	err := r.db.QueryRow(ctx, `
		UPDATE courses
		SET department_id = $1, name = $2, duration_years = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at`,
		course.DepartmentID, course.Name, course.DurationYears, course.ID,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.ErrCourseNotFound
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	return nil
}

// Delete removes a course and, by cascade, its semesters
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// SemesterRepository handles database operations for semesters
type SemesterRepository struct {
	db *pgxpool.Pool
}

// NewSemesterRepository creates a new SemesterRepository
func NewSemesterRepository(db *pgxpool.Pool) *SemesterRepository {
	return &SemesterRepository{db: db}
}

const semesterUniqueConstraint = "semesters_course_number_year_key"

var semesterSelect = psql.Select(
	"s.id", "s.course_id", "s.semester_number", "s.academic_year", "s.created_at", "s.updated_at",
	"c.id", "c.department_id", "c.name", "c.duration_years", "c.created_at", "c.updated_at",
).From("semesters s").Join("courses c ON c.id = s.course_id")

func scanSemester(row rowScanner) (*models.Semester, error) {
	var s models.Semester
	var c models.Course
	if err := row.Scan(
		&s.ID, &s.CourseID, &s.SemesterNumber, &s.AcademicYear, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.DepartmentID, &c.Name, &c.DurationYears, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Course = &c
	return &s, nil
}

// Create inserts a semester
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO semesters (course_id, semester_number, academic_year)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		semester.CourseID, semester.SemesterNumber, semester.AcademicYear,
	).Scan(&semester.ID, &semester.CreatedAt, &semester.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, semesterUniqueConstraint):
			return apperrors.ErrSemesterAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating semester: %w", err)
	}
	return nil
}

// GetByID retrieves a semester with its course
func (r *SemesterRepository) GetByID(ctx context.Context, id int64) (*models.Semester, error) {
	sqlStr, args, err := semesterSelect.Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build semester query: %w", err)
	}
	semester, err := scanSemester(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}
	return semester, nil
}

// List returns the semesters of a course, newest academic year first
func (r *SemesterRepository) List(ctx context.Context, courseID int64) ([]*models.Semester, error) {
	q := semesterSelect.OrderBy("s.academic_year DESC", "s.semester_number", "s.id")
	if courseID != 0 {
		q = q.Where(squirrel.Eq{"s.course_id": courseID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build semester list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}
	defer rows.Close()

	semesters := []*models.Semester{}
	for rows.Next() {
		semester, err := scanSemester(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning semester: %w", err)
		}
		semesters = append(semesters, semester)
	}
	return semesters, rows.Err()
}

// Update modifies a semester
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	err := r.db.QueryRow(ctx, `
		UPDATE semesters
		SET course_id = $1, semester_number = $2, academic_year = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at`,
		semester.CourseID, semester.SemesterNumber, semester.AcademicYear, semester.ID,
	).Scan(&semester.CreatedAt, &semester.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.ErrSemesterNotFound
		case dberrors.IsDuplicateConstraintError(err, semesterUniqueConstraint):
			return apperrors.ErrSemesterAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error updating semester: %w", err)
	}
	return nil
}

// Delete removes a semester. Subjects cascade; students are detached.
func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM semesters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting semester: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSemesterNotFound
	}
	return nil
}

// SubjectRepository handles database operations for subjects
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db}
}

var subjectSelect = psql.Select(
	"sub.id", "sub.semester_id", "sub.name", "sub.code", "sub.credits", "sub.created_at", "sub.updated_at",
).From("subjects sub")

func scanSubject(row rowScanner) (*models.Subject, error) {
	var s models.Subject
	if err := row.Scan(&s.ID, &s.SemesterID, &s.Name, &s.Code, &s.Credits, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubjectRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Subject, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subject query: %w", err)
	}
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// Create inserts a subject, applying the default credit count
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO subjects (semester_id, name, code, credits)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		subject.SemesterID, subject.Name, subject.Code, subject.Credits,
	).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "subjects_code_key"):
			return apperrors.ErrSubjectAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// GetByID retrieves a subject
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	sqlStr, args, err := subjectSelect.Where(squirrel.Eq{"sub.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subject query: %w", err)
	}
	subject, err := scanSubject(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}
	return subject, nil
}

// List returns the subjects of a semester, or all subjects for semesterID 0
func (r *SubjectRepository) List(ctx context.Context, semesterID int64) ([]*models.Subject, error) {
	q := subjectSelect.OrderBy("sub.code")
	if semesterID != 0 {
		q = q.Where(squirrel.Eq{"sub.semester_id": semesterID})
	}
	return r.query(ctx, q)
}

// ListByTeacher returns the subjects a teacher is assigned to
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*models.Subject, error) {
	q := subjectSelect.
		Join("teacher_subject_assignments tsa ON tsa.subject_id = sub.id").
		Where(squirrel.Eq{"tsa.teacher_id": teacherID}).
		OrderBy("sub.code")
	return r.query(ctx, q)
}

// Update modifies a subject
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	err := r.db.QueryRow(ctx, `
		UPDATE subjects
		SET semester_id = $1, name = $2, code = $3, credits = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at`,
		subject.SemesterID, subject.Name, subject.Code, subject.Credits, subject.ID,
	).Scan(&subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.ErrSubjectNotFound
		case dberrors.IsDuplicateConstraintError(err, "subjects_code_key"):
			return apperrors.ErrSubjectAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error updating subject: %w", err)
	}
	return nil
}

// Delete removes a subject with its assignments, attendance and results
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

// AssignmentRepository handles teacher_subject_assignments
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

var assignmentSelect = psql.Select(
	"id", "teacher_id", "subject_id", "assigned_date", "created_at", "updated_at",
).From("teacher_subject_assignments")

func scanAssignment(row rowScanner) (*models.TeacherSubjectAssignment, error) {
	var a models.TeacherSubjectAssignment
	if err := row.Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.AssignedDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an assignment. A zero AssignedDate means today.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.TeacherSubjectAssignment) error {
	var assigned any
	if !assignment.AssignedDate.IsZero() {
		assigned = assignment.AssignedDate
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO teacher_subject_assignments (teacher_id, subject_id, assigned_date)
		VALUES ($1, $2, COALESCE($3::date, CURRENT_DATE))
		RETURNING id, assigned_date, created_at, updated_at`,
		assignment.TeacherID, assignment.SubjectID, assigned,
	).Scan(&assignment.ID, &assignment.AssignedDate, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "teacher_subject_assignments_teacher_subject_key"):
			return apperrors.ErrAssignmentExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating assignment: %w", err)
	}
	return nil
}

// GetByID retrieves an assignment
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.TeacherSubjectAssignment, error) {
	sqlStr, args, err := assignmentSelect.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build assignment query: %w", err)
	}
	assignment, err := scanAssignment(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return assignment, nil
}

// Exists reports whether the teacher is assigned to the subject
func (r *AssignmentRepository) Exists(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM teacher_subject_assignments WHERE teacher_id = $1 AND subject_id = $2)`,
		teacherID, subjectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking assignment: %w", err)
	}
	return exists, nil
}

// List returns assignments matching the filter
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]*models.TeacherSubjectAssignment, error) {
	where := squirrel.And{}
	if filter.TeacherID != 0 {
		where = append(where, squirrel.Eq{"teacher_id": filter.TeacherID})
	}
	if filter.SubjectID != 0 {
		where = append(where, squirrel.Eq{"subject_id": filter.SubjectID})
	}
	sqlStr, args, err := assignmentSelect.Where(where).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build assignment list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := []*models.TeacherSubjectAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Delete removes an assignment
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teacher_subject_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}
