package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/db"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
	"github.com/yigit/sims/internal/pkg/logger"
)

// AttendanceRepository handles database operations for attendance
type AttendanceRepository struct {
	database *db.PostgresDB
	db       *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(database *db.PostgresDB) *AttendanceRepository {
	return &AttendanceRepository{database: database, db: database.Pool}
}

const attendanceUniqueConstraint = "attendance_student_subject_date_lecture_key"

var attendanceColumns = []string{
	"id", "student_id", "subject_id", "teacher_id", "date", "to_char(lecture_time, 'HH24:MI')",
	"status", "marked_at", "is_editable", "created_at", "updated_at",
}

func scanAttendance(row rowScanner) (*models.Attendance, error) {
	var a models.Attendance
	if err := row.Scan(
		&a.ID, &a.StudentID, &a.SubjectID, &a.TeacherID, &a.Date, &a.LectureTime,
		&a.Status, &a.MarkedAt, &a.IsEditable, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func attendanceWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, attendanceUniqueConstraint):
		return apperrors.ErrAttendanceAlreadyMarked
	case dberrors.IsForeignKeyError(err):
		return translateForeignKey(err)
	}
	return fmt.Errorf("error saving attendance: %w", err)
}

const insertAttendance = `
	INSERT INTO attendance (student_id, subject_id, teacher_id, date, lecture_time, status, marked_at, is_editable)
	VALUES ($1, $2, $3, $4, $5::text::time, $6, COALESCE($7, NOW()), $8)
	RETURNING id, marked_at, created_at, updated_at`

func insertAttendanceRow(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, a *models.Attendance) error {
	var markedAt any
	if !a.MarkedAt.IsZero() {
		markedAt = a.MarkedAt
	}
	return q.QueryRow(ctx, insertAttendance,
		a.StudentID, a.SubjectID, a.TeacherID, a.Date, a.LectureTime, a.Status, markedAt, a.IsEditable,
	).Scan(&a.ID, &a.MarkedAt, &a.CreatedAt, &a.UpdatedAt)
}

// Create inserts a single attendance record
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if err := insertAttendanceRow(ctx, r.db, record); err != nil {
		return attendanceWriteError(err)
	}
	return nil
}

// CreateBatch inserts every record in one transaction
func (r *AttendanceRepository) CreateBatch(ctx context.Context, records []*models.Attendance) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertAttendanceRow(ctx, tx, rec); err != nil {
				logger.Warn().Err(err).Int64("student_id", rec.StudentID).Msg("Bulk attendance insert failed, rolling back")
				return attendanceWriteError(err)
			}
		}
		return nil
	})
}

// GetByID retrieves an attendance record
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.Attendance, error) {
	sqlStr, args, err := psql.Select(attendanceColumns...).From("attendance").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}
	record, err := scanAttendance(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}
	return record, nil
}

// Update persists status and editability
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	err := r.db.QueryRow(ctx, `
		UPDATE attendance
		SET status = $1, is_editable = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`,
		record.Status, record.IsEditable, record.ID,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrAttendanceNotFound
		}
		return fmt.Errorf("error updating attendance: %w", err)
	}
	return nil
}

// List returns a page of attendance records, newest lecture first
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, int64, error) {
	where := squirrel.And{}
	if filter.StudentID != 0 {
		where = append(where, squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.SubjectID != 0 {
		where = append(where, squirrel.Eq{"subject_id": filter.SubjectID})
	}
	if filter.TeacherID != 0 {
		where = append(where, squirrel.Eq{"teacher_id": filter.TeacherID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.DateTo})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("attendance").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Attendance{}, 0, nil
	}

	q := paged(psql.Select(attendanceColumns...).From("attendance").Where(where).
		OrderBy("date DESC", "lecture_time DESC", "id"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build attendance list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	records := []*models.Attendance{}
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning attendance: %w", err)
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// Summarize aggregates a student's attendance per subject
func (r *AttendanceRepository) Summarize(ctx context.Context, studentID int64) ([]*models.AttendanceSubjectSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.code, s.name,
		       COUNT(*) FILTER (WHERE a.status = 'PRESENT'),
		       COUNT(*)
		FROM attendance a
		JOIN subjects s ON s.id = a.subject_id
		WHERE a.student_id = $1
		GROUP BY s.id, s.code, s.name
		ORDER BY s.code`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error summarizing attendance: %w", err)
	}
	defer rows.Close()

	summaries := []*models.AttendanceSubjectSummary{}
	for rows.Next() {
		var s models.AttendanceSubjectSummary
		if err := rows.Scan(&s.SubjectID, &s.SubjectCode, &s.SubjectName, &s.Present, &s.Total); err != nil {
			return nil, fmt.Errorf("error scanning attendance summary: %w", err)
		}
		s.ComputePercentage()
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}
