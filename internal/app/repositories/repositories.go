package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/db"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
)

// NewRepositories initializes all Postgres repositories
func NewRepositories(database *db.PostgresDB) *services.Repositories {
	pool := database.Pool
	return &services.Repositories{
		Departments:   NewDepartmentRepository(pool),
		Courses:       NewCourseRepository(pool),
		Semesters:     NewSemesterRepository(pool),
		Subjects:      NewSubjectRepository(pool),
		Assignments:   NewAssignmentRepository(pool),
		Admins:        NewAdminRepository(pool),
		Teachers:      NewTeacherRepository(pool),
		Students:      NewStudentRepository(pool),
		ResetTokens:   NewPasswordResetTokenRepository(pool),
		Attendance:    NewAttendanceRepository(database),
		Results:       NewResultRepository(pool),
		Events:        NewEventRepository(pool),
		Announcements: NewAnnouncementRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}

// psql builds statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// foreignKeyErrors maps the referencing column of a violated foreign key to
// the error for the missing parent row. Postgres names FK constraints
// <table>_<column>_fkey.
var foreignKeyErrors = []struct {
	column string
	err    error
}{
	{"department_id", apperrors.ErrDepartmentNotFound},
	{"course_id", apperrors.ErrCourseNotFound},
	{"semester_id", apperrors.ErrSemesterNotFound},
	{"subject_id", apperrors.ErrSubjectNotFound},
	{"teacher_id", apperrors.ErrTeacherNotFound},
	{"student_id", apperrors.ErrStudentNotFound},
	{"admin_id", apperrors.ErrAdminNotFound},
}

// translateForeignKey turns an FK violation into the matching not-found error.
// Any other error is returned unchanged.
func translateForeignKey(err error) error {
	if !dberrors.IsForeignKeyError(err) {
		return err
	}
	name := dberrors.ConstraintName(err)
	for _, fk := range foreignKeyErrors {
		if strings.HasSuffix(name, fk.column+"_fkey") {
			return fk.err
		}
	}
	return apperrors.NewResourceNotFoundError("referenced resource not found")
}

// paged applies LIMIT/OFFSET unless the page is unbounded
func paged(q squirrel.SelectBuilder, page models.Page) squirrel.SelectBuilder {
	if page.Unbounded() {
		return q
	}
	return q.Limit(uint64(page.Size)).Offset(uint64(page.Offset()))
}

// count runs a COUNT(*) query built by squirrel
func count(ctx context.Context, pool *pgxpool.Pool, q squirrel.SelectBuilder) (int64, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}
