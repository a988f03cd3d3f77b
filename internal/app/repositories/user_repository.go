package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
	"github.com/yigit/sims/internal/pkg/logger"
)

// AdminRepository handles database operations for admin_users
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, email, password, full_name, phone, is_active, created_at, updated_at`

func scanAdmin(row rowScanner) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.FullName, &a.Phone, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an admin account
func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO admin_users (email, password, full_name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		admin.Email, admin.Password, admin.FullName, admin.Phone, admin.IsActive,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "admin_users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) getOne(ctx context.Context, where string, arg any) (*models.AdminUser, error) {
	admin, err := scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE `+where, arg))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("error retrieving admin: %w", err)
	}
	return admin, nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves an admin by e-mail, case-insensitively
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// List returns every admin
func (r *AdminRepository) List(ctx context.Context) ([]*models.AdminUser, error) {
	rows, err := r.db.Query(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing admins: %w", err)
	}
	defer rows.Close()

	admins := []*models.AdminUser{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

// UpdatePassword stores a new password hash
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return updatePassword(ctx, r.db, "admin_users", id, passwordHash, apperrors.ErrAdminNotFound)
}

func updatePassword(ctx context.Context, db *pgxpool.Pool, table string, id int64, hash string, notFound error) error {
	tag, err := db.Exec(ctx, `UPDATE `+table+` SET password = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func updateProfilePhoto(ctx context.Context, db *pgxpool.Pool, table string, id int64, url string, notFound error) error {
	tag, err := db.Exec(ctx, `UPDATE `+table+` SET profile_photo = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("error updating profile photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func searchClause(search string, columns ...string) squirrel.Sqlizer {
	pattern := "%" + strings.TrimSpace(search) + "%"
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	db *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{db: db}
}

var teacherColumns = []string{
	"id", "email", "password", "full_name", "phone", "employee_id", "department_id",
	"is_active", "profile_photo", "created_at", "updated_at",
}

func scanTeacher(row rowScanner) (*models.Teacher, error) {
	var t models.Teacher
	if err := row.Scan(
		&t.ID, &t.Email, &t.Password, &t.FullName, &t.Phone, &t.EmployeeID, &t.DepartmentID,
		&t.IsActive, &t.ProfilePhoto, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func teacherWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "teachers_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "teachers_employee_id_key"):
		return apperrors.ErrEmployeeIDAlreadyExists
	case dberrors.IsForeignKeyError(err):
		return translateForeignKey(err)
	}
	return fmt.Errorf("error saving teacher: %w", err)
}

// Create inserts a teacher account
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO teachers (email, password, full_name, phone, employee_id, department_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		teacher.Email, teacher.Password, teacher.FullName, teacher.Phone,
		teacher.EmployeeID, teacher.DepartmentID, teacher.IsActive,
	).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.UpdatedAt)
	if err != nil {
		return teacherWriteError(err)
	}
	return nil
}

func (r *TeacherRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Teacher, error) {
	sqlStr, args, err := psql.Select(teacherColumns...).From("teachers").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher query: %w", err)
	}
	teacher, err := scanTeacher(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("error retrieving teacher: %w", err)
	}
	return teacher, nil
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a teacher by e-mail, case-insensitively
func (r *TeacherRepository) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// List returns a page of teachers and the total matching the filter
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]*models.Teacher, int64, error) {
	where := squirrel.And{}
	if filter.DepartmentID != 0 {
		where = append(where, squirrel.Eq{"department_id": filter.DepartmentID})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		where = append(where, searchClause(filter.Search, "full_name", "email", "employee_id"))
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("teachers").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Teacher{}, 0, nil
	}

	q := paged(psql.Select(teacherColumns...).From("teachers").Where(where).OrderBy("full_name", "id"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build teacher list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing teacher list query")
		return nil, 0, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := []*models.Teacher{}
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, teacher)
	}
	return teachers, total, rows.Err()
}

// Update modifies profile fields; password and photo have their own methods
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	err := r.db.QueryRow(ctx, `
		UPDATE teachers
		SET email = $1, full_name = $2, phone = $3, employee_id = $4, department_id = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING password, profile_photo, created_at, updated_at`,
		teacher.Email, teacher.FullName, teacher.Phone, teacher.EmployeeID, teacher.DepartmentID,
		teacher.IsActive, teacher.ID,
	).Scan(&teacher.Password, &teacher.ProfilePhoto, &teacher.CreatedAt, &teacher.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrTeacherNotFound
		}
		return teacherWriteError(err)
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *TeacherRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return updatePassword(ctx, r.db, "teachers", id, passwordHash, apperrors.ErrTeacherNotFound)
}

// UpdateProfilePhoto records the URL of the teacher's photo
func (r *TeacherRepository) UpdateProfilePhoto(ctx context.Context, id int64, url string) error {
	return updateProfilePhoto(ctx, r.db, "teachers", id, url, apperrors.ErrTeacherNotFound)
}

// Delete removes a teacher with their assignments and attendance entries
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

var studentColumns = []string{
	"id", "email", "password", "full_name", "phone", "roll_number", "semester_id",
	"enrollment_year", "is_active", "profile_photo", "created_at", "updated_at",
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	if err := row.Scan(
		&s.ID, &s.Email, &s.Password, &s.FullName, &s.Phone, &s.RollNumber, &s.SemesterID,
		&s.EnrollmentYear, &s.IsActive, &s.ProfilePhoto, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func studentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "students_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "students_roll_number_key"):
		return apperrors.ErrRollNumberAlreadyExists
	case dberrors.IsForeignKeyError(err):
		return translateForeignKey(err)
	}
	return fmt.Errorf("error saving student: %w", err)
}

// Create inserts a student account
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO students (email, password, full_name, phone, roll_number, semester_id, enrollment_year, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		student.Email, student.Password, student.FullName, student.Phone, student.RollNumber,
		student.SemesterID, student.EnrollmentYear, student.IsActive,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return studentWriteError(err)
	}
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sqlStr, args, err := psql.Select(studentColumns...).From("students").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}
	student, err := scanStudent(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a student by e-mail, case-insensitively
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// GetByRollNumber retrieves a student by roll number
func (r *StudentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"roll_number": rollNumber})
}

// List returns a page of students and the total matching the filter
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	where := squirrel.And{}
	if filter.SemesterID != 0 {
		where = append(where, squirrel.Eq{"semester_id": filter.SemesterID})
	}
	if filter.EnrollmentYear != 0 {
		where = append(where, squirrel.Eq{"enrollment_year": filter.EnrollmentYear})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		where = append(where, searchClause(filter.Search, "full_name", "email", "roll_number"))
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("students").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Student{}, 0, nil
	}

	q := paged(psql.Select(studentColumns...).From("students").Where(where).OrderBy("roll_number"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build student list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing student list query")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, student)
	}
	return students, total, rows.Err()
}

// Update modifies profile fields; password and photo have their own methods
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	err := r.db.QueryRow(ctx, `
		UPDATE students
		SET email = $1, full_name = $2, phone = $3, roll_number = $4, semester_id = $5,
		    enrollment_year = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING password, profile_photo, created_at, updated_at`,
		student.Email, student.FullName, student.Phone, student.RollNumber, student.SemesterID,
		student.EnrollmentYear, student.IsActive, student.ID,
	).Scan(&student.Password, &student.ProfilePhoto, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrStudentNotFound
		}
		return studentWriteError(err)
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return updatePassword(ctx, r.db, "students", id, passwordHash, apperrors.ErrStudentNotFound)
}

// UpdateProfilePhoto records the URL of the student's photo
func (r *StudentRepository) UpdateProfilePhoto(ctx context.Context, id int64, url string) error {
	return updateProfilePhoto(ctx, r.db, "students", id, url, apperrors.ErrStudentNotFound)
}

// Delete removes a student with their attendance, results and notifications
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
