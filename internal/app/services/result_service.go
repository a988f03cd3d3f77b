package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/spreadsheet"
)

// ResultService manages marks, approval and publication
type ResultService struct {
	resultRepo     ResultRepository
	studentRepo    StudentRepository
	subjectRepo    SubjectRepository
	assignmentRepo AssignmentRepository
	notifier       *NotificationService
	logger         zerolog.Logger
}

// NewResultService creates a new ResultService
func NewResultService(repos *Repositories, notifier *NotificationService, logger zerolog.Logger) *ResultService {
	return &ResultService{
		resultRepo:     repos.Results,
		studentRepo:    repos.Students,
		subjectRepo:    repos.Subjects,
		assignmentRepo: repos.Assignments,
		notifier:       notifier,
		logger:         logger,
	}
}

// marksInput is what both the JSON endpoint and the spreadsheet import feed
// into the save path
type marksInput struct {
	StudentID     int64
	SubjectID     int64
	InternalMarks float64
	ExternalMarks float64
	MaxInternal   int
	MaxExternal   int
	MaxTotal      int
	Remarks       *string
}

func validateMarks(r *models.Result) error {
	switch {
	case !finite(r.InternalMarks) || !finite(r.ExternalMarks):
		return apperrors.NewValidationError("marks must be finite numbers")
	case r.InternalMarks < 0 || r.ExternalMarks < 0:
		return apperrors.NewValidationError("marks cannot be negative")
	case r.MaxTotal <= 0:
		return apperrors.NewValidationError("max_total must be positive")
	case r.InternalMarks > float64(r.MaxInternal):
		return apperrors.NewValidationError(fmt.Sprintf("internal_marks cannot exceed %d", r.MaxInternal))
	case r.ExternalMarks > float64(r.MaxExternal):
		return apperrors.NewValidationError(fmt.Sprintf("external_marks cannot exceed %d", r.MaxExternal))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Save enters or updates marks for a student in a subject. The boolean is
// true when a new result was created.
func (s *ResultService) Save(ctx context.Context, principal auth.Principal, req dto.SaveResultRequest) (*models.Result, bool, error) {
	if req.InternalMarks == nil || req.ExternalMarks == nil {
		return nil, false, apperrors.NewValidationError("internal_marks and external_marks are required")
	}
	if err := ensureAssigned(ctx, s.assignmentRepo, principal, req.SubjectID); err != nil {
		return nil, false, err
	}
	if _, err := s.subjectRepo.GetByID(ctx, req.SubjectID); err != nil {
		return nil, false, err
	}
	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, false, err
	}
	return s.save(ctx, principal, marksInput{
		StudentID:     req.StudentID,
		SubjectID:     req.SubjectID,
		InternalMarks: *req.InternalMarks,
		ExternalMarks: *req.ExternalMarks,
		MaxInternal:   req.MaxInternal,
		MaxExternal:   req.MaxExternal,
		MaxTotal:      req.MaxTotal,
		Remarks:       req.Remarks,
	})
}

// save upserts one result. Callers have already checked the assignment and
// that the student and subject exist.
func (s *ResultService) save(ctx context.Context, principal auth.Principal, in marksInput) (*models.Result, bool, error) {
	existing, err := s.resultRepo.GetByStudentSubject(ctx, in.StudentID, in.SubjectID)
	if err != nil && !errors.Is(err, apperrors.ErrResultNotFound) {
		return nil, false, err
	}

	result := existing
	created := result == nil
	if created {
		result = &models.Result{StudentID: in.StudentID, SubjectID: in.SubjectID}
	} else if result.IsPublished && !principal.IsAdmin() {
		return nil, false, apperrors.ErrResultPublished
	}

	result.InternalMarks = in.InternalMarks
	result.ExternalMarks = in.ExternalMarks
	if in.MaxInternal > 0 {
		result.MaxInternal = in.MaxInternal
	}
	if in.MaxExternal > 0 {
		result.MaxExternal = in.MaxExternal
	}
	if in.MaxTotal > 0 {
		result.MaxTotal = in.MaxTotal
	}
	if in.Remarks != nil {
		remarks := strings.TrimSpace(*in.Remarks)
		result.Remarks = &remarks
	}
	result.ApplyDefaults()
	if err := validateMarks(result); err != nil {
		return nil, false, err
	}

	if principal.IsTeacher() {
		teacherID := principal.UserID
		result.EnteredByTeacherID = &teacherID
		// new marks need a fresh sign-off
		if !result.IsPublished {
			result.ApprovedByAdminID = nil
		}
	}

	if created {
		err = s.resultRepo.Create(ctx, result)
	} else {
		err = s.resultRepo.Update(ctx, result)
	}
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// List returns results visible to the caller. Teachers are limited to the
// subjects they teach; students to their own published results.
func (s *ResultService) List(ctx context.Context, principal auth.Principal, filter models.ResultFilter) ([]*models.Result, int64, error) {
	switch {
	case principal.IsStudent():
		return s.ListOwn(ctx, principal, filter.Page)
	case principal.IsTeacher():
		if filter.SubjectID != 0 {
			if err := ensureAssigned(ctx, s.assignmentRepo, principal, filter.SubjectID); err != nil {
				return nil, 0, err
			}
			break
		}
		assignments, err := s.assignmentRepo.List(ctx, models.AssignmentFilter{TeacherID: principal.UserID})
		if err != nil {
			return nil, 0, err
		}
		filter.SubjectIDs = make([]int64, 0, len(assignments))
		for _, a := range assignments {
			filter.SubjectIDs = append(filter.SubjectIDs, a.SubjectID)
		}
	}
	return s.resultRepo.List(ctx, filter)
}

// ListOwn returns a student's published results
func (s *ResultService) ListOwn(ctx context.Context, principal auth.Principal, page models.Page) ([]*models.Result, int64, error) {
	published := true
	return s.resultRepo.List(ctx, models.ResultFilter{
		StudentID:   principal.UserID,
		IsPublished: &published,
		Page:        page,
	})
}

// Get returns one result, subject to the same visibility as List
func (s *ResultService) Get(ctx context.Context, principal auth.Principal, id int64) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case principal.IsStudent():
		if result.StudentID != principal.UserID || !result.IsPublished {
			return nil, apperrors.ErrResultNotFound
		}
	case principal.IsTeacher():
		if err := ensureAssigned(ctx, s.assignmentRepo, principal, result.SubjectID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Approve records the admin's sign-off
func (s *ResultService) Approve(ctx context.Context, principal auth.Principal, id int64) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	adminID := principal.UserID
	result.ApprovedByAdminID = &adminID
	if err := s.resultRepo.Update(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Publish makes an approved result visible to its student and notifies them.
// Publishing an already published result changes nothing.
func (s *ResultService) Publish(ctx context.Context, id int64) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.IsPublished {
		return result, nil
	}
	if !result.Approved() {
		return nil, apperrors.ErrResultNotApproved
	}

	result.IsPublished = true
	if err := s.resultRepo.Update(ctx, result); err != nil {
		return nil, err
	}
	s.notifyPublished(ctx, result)
	return result, nil
}

func (s *ResultService) notifyPublished(ctx context.Context, result *models.Result) {
	if s.notifier == nil {
		return
	}
	subjectName := fmt.Sprintf("subject %d", result.SubjectID)
	if subject, err := s.subjectRepo.GetByID(ctx, result.SubjectID); err == nil {
		subjectName = fmt.Sprintf("%s (%s)", subject.Name, subject.Code)
	}
	relatedID := result.ID
	n := &models.Notification{
		Recipient: models.StudentRecipient(result.StudentID),
		Type:      models.NotificationResultPublished,
		Title:     "Result published",
		Message:   fmt.Sprintf("Your result for %s has been published: grade %s.", subjectName, result.Grade),
		RelatedID: &relatedID,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("result_id", result.ID).Msg("Failed to notify student of published result")
	}
}

// Unpublish hides a result from its student again
func (s *ResultService) Unpublish(ctx context.Context, id int64) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !result.IsPublished {
		return result, nil
	}
	result.IsPublished = false
	if err := s.resultRepo.Update(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Export renders every result of a subject as an XLSX workbook and returns
// the bytes and a download filename
func (s *ResultService) Export(ctx context.Context, principal auth.Principal, subjectID int64) ([]byte, string, error) {
	if err := ensureAssigned(ctx, s.assignmentRepo, principal, subjectID); err != nil {
		return nil, "", err
	}
	subject, err := s.subjectRepo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, "", err
	}
	results, _, err := s.resultRepo.List(ctx, models.ResultFilter{SubjectID: subjectID})
	if err != nil {
		return nil, "", err
	}

	rows := make([]spreadsheet.ResultRow, 0, len(results))
	for _, r := range results {
		student, err := s.studentRepo.GetByID(ctx, r.StudentID)
		if err != nil {
			return nil, "", fmt.Errorf("error loading student %d: %w", r.StudentID, err)
		}
		row := spreadsheet.ResultRow{
			RollNumber:    student.RollNumber,
			StudentName:   student.FullName,
			InternalMarks: r.InternalMarks,
			ExternalMarks: r.ExternalMarks,
			TotalMarks:    r.TotalMarks,
			MaxTotal:      r.MaxTotal,
			Percentage:    r.Percentage,
			Grade:         string(r.Grade),
			Published:     r.IsPublished,
		}
		if r.Remarks != nil {
			row.Remarks = *r.Remarks
		}
		rows = append(rows, row)
	}

	data, err := spreadsheet.WriteResults(fmt.Sprintf("%s - %s results", subject.Code, subject.Name), rows)
	if err != nil {
		return nil, "", fmt.Errorf("error writing workbook: %w", err)
	}
	return data, fmt.Sprintf("results_%s.xlsx", strings.ToLower(subject.Code)), nil
}

// Import upserts marks for a subject from an XLSX workbook. Rows are saved
// independently; failures are collected in the report instead of aborting.
func (s *ResultService) Import(ctx context.Context, principal auth.Principal, subjectID int64, r io.Reader) (*dto.ImportReport, error) {
	if err := ensureAssigned(ctx, s.assignmentRepo, principal, subjectID); err != nil {
		return nil, err
	}
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	rows, rowErrs, err := spreadsheet.ParseMarks(r)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrInvalidFileFormat) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return nil, err
	}

	report := &dto.ImportReport{Errors: []dto.ImportRowError{}}
	for _, re := range rowErrs {
		report.Errors = append(report.Errors, dto.ImportRowError{Row: re.Row, RollNumber: re.RollNumber, Error: re.Err.Error()})
	}

	for _, row := range rows {
		if err := s.importRow(ctx, principal, subjectID, row); err != nil {
			report.Errors = append(report.Errors, dto.ImportRowError{Row: row.Row, RollNumber: row.RollNumber, Error: importMessage(err)})
			continue
		}
		report.Imported++
	}
	report.Failed = len(report.Errors)

	s.logger.Info().
		Int64("subject_id", subjectID).
		Int64("user_id", principal.UserID).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("Results imported")
	return report, nil
}

func (s *ResultService) importRow(ctx context.Context, principal auth.Principal, subjectID int64, row spreadsheet.MarksRow) error {
	student, err := s.studentRepo.GetByRollNumber(ctx, row.RollNumber)
	if err != nil {
		return err
	}
	_, _, err = s.save(ctx, principal, marksInput{
		StudentID:     student.ID,
		SubjectID:     subjectID,
		InternalMarks: row.InternalMarks,
		ExternalMarks: row.ExternalMarks,
		Remarks:       row.Remarks,
	})
	return err
}

// importMessage keeps internal failures out of the report
func importMessage(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return custom.Message
	}
	return "could not save row"
}
