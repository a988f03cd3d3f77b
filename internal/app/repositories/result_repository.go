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

// ResultRepository handles database operations for results. Both write paths
// call Recompute, so total, percentage and grade in the table always follow
// from the stored marks.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

var resultColumns = []string{
	"id", "student_id", "subject_id", "internal_marks", "external_marks", "total_marks",
	"max_internal", "max_external", "max_total", "percentage", "grade", "is_published", "remarks",
	"entered_by_teacher_id", "approved_by_admin_id", "created_at", "updated_at",
}

func scanResult(row rowScanner) (*models.Result, error) {
	var r models.Result
	if err := row.Scan(
		&r.ID, &r.StudentID, &r.SubjectID, &r.InternalMarks, &r.ExternalMarks, &r.TotalMarks,
		&r.MaxInternal, &r.MaxExternal, &r.MaxTotal, &r.Percentage, &r.Grade, &r.IsPublished, &r.Remarks,
		&r.EnteredByTeacherID, &r.ApprovedByAdminID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a result
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	result.Recompute()
	err := r.db.QueryRow(ctx, `
		INSERT INTO results (
			student_id, subject_id, internal_marks, external_marks, total_marks,
			max_internal, max_external, max_total, percentage, grade, is_published, remarks,
			entered_by_teacher_id, approved_by_admin_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		result.StudentID, result.SubjectID, result.InternalMarks, result.ExternalMarks, result.TotalMarks,
		result.MaxInternal, result.MaxExternal, result.MaxTotal, result.Percentage, result.Grade,
		result.IsPublished, result.Remarks, result.EnteredByTeacherID, result.ApprovedByAdminID,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "results_student_subject_key"):
			return apperrors.ErrResultAlreadyExists
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating result: %w", err)
	}
	return nil
}

// Update rewrites marks, derived fields and workflow state. The
// (student, subject) pair of a result never changes.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.Recompute()
	err := r.db.QueryRow(ctx, `
		UPDATE results
		SET internal_marks = $1, external_marks = $2, total_marks = $3,
		    max_internal = $4, max_external = $5, max_total = $6,
		    percentage = $7, grade = $8, is_published = $9, remarks = $10,
		    entered_by_teacher_id = $11, approved_by_admin_id = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING student_id, subject_id, created_at, updated_at`,
		result.InternalMarks, result.ExternalMarks, result.TotalMarks,
		result.MaxInternal, result.MaxExternal, result.MaxTotal,
		result.Percentage, result.Grade, result.IsPublished, result.Remarks,
		result.EnteredByTeacherID, result.ApprovedByAdminID, result.ID,
	).Scan(&result.StudentID, &result.SubjectID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.ErrResultNotFound
		case dberrors.IsForeignKeyError(err):
			return translateForeignKey(err)
		}
		return fmt.Errorf("error updating result: %w", err)
	}
	return nil
}

func (r *ResultRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Result, error) {
	sqlStr, args, err := psql.Select(resultColumns...).From("results").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build result query: %w", err)
	}
	result, err := scanResult(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrResultNotFound
		}
		return nil, fmt.Errorf("error retrieving result: %w", err)
	}
	return result, nil
}

// GetByID retrieves a result
func (r *ResultRepository) GetByID(ctx context.Context, id int64) (*models.Result, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByStudentSubject retrieves the result for a (student, subject) pair
func (r *ResultRepository) GetByStudentSubject(ctx context.Context, studentID, subjectID int64) (*models.Result, error) {
	return r.getOne(ctx, squirrel.Eq{"student_id": studentID, "subject_id": subjectID})
}

// List returns a page of results and the total matching the filter
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]*models.Result, int64, error) {
	where := squirrel.And{}
	if filter.StudentID != 0 {
		where = append(where, squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.SubjectID != 0 {
		where = append(where, squirrel.Eq{"subject_id": filter.SubjectID})
	}
	if filter.SubjectIDs != nil {
		if len(filter.SubjectIDs) == 0 {
			return []*models.Result{}, 0, nil
		}
		where = append(where, squirrel.Eq{"subject_id": filter.SubjectIDs})
	}
	if filter.IsPublished != nil {
		where = append(where, squirrel.Eq{"is_published": *filter.IsPublished})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("results").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Result{}, 0, nil
	}

	q := paged(psql.Select(resultColumns...).From("results").Where(where).OrderBy("subject_id", "student_id"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build result list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing results: %w", err)
	}
	defer rows.Close()

	results := []*models.Result{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning result: %w", err)
		}
		results = append(results, result)
	}
	return results, total, rows.Err()
}
