package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/helpers"
	"github.com/yigit/sims/internal/pkg/validation"
)

// AttendanceService records lectures and enforces the edit window
type AttendanceService struct {
	attendanceRepo AttendanceRepository
	assignmentRepo AssignmentRepository
	studentRepo    StudentRepository
	clock          helpers.Clock
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(repos *Repositories, clock helpers.Clock, logger zerolog.Logger) *AttendanceService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &AttendanceService{
		attendanceRepo: repos.Attendance,
		assignmentRepo: repos.Assignments,
		studentRepo:    repos.Students,
		clock:          clock,
		logger:         logger,
	}
}

// ensureAssigned checks that a teacher teaches the subject. Admins pass.
func ensureAssigned(ctx context.Context, repo AssignmentRepository, principal auth.Principal, subjectID int64) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.IsTeacher() {
		return apperrors.ErrPermissionDenied
	}
	ok, err := repo.Exists(ctx, principal.UserID, subjectID)
	if err != nil {
		return fmt.Errorf("error checking assignment: %w", err)
	}
	if !ok {
		return apperrors.ErrNotAssigned
	}
	return nil
}

func (s *AttendanceService) newRecord(teacherID, studentID, subjectID int64, date, lectureTime, status string) (*models.Attendance, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	clock, err := validation.ParseClock(lectureTime)
	if err != nil {
		return nil, apperrors.NewValidationError("lecture_time must be in HH:MM format")
	}
	st := models.AttendanceStatus(status)
	if !st.Valid() {
		return nil, apperrors.NewValidationError("status must be PRESENT or ABSENT")
	}
	return &models.Attendance{
		StudentID:   studentID,
		SubjectID:   subjectID,
		TeacherID:   teacherID,
		Date:        day,
		LectureTime: clock,
		Status:      st,
		MarkedAt:    s.clock(),
		IsEditable:  true,
	}, nil
}

// Mark records one student at one lecture
func (s *AttendanceService) Mark(ctx context.Context, principal auth.Principal, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if !principal.IsTeacher() {
		return nil, apperrors.NewForbiddenError("only teachers can mark attendance")
	}
	if err := ensureAssigned(ctx, s.assignmentRepo, principal, req.SubjectID); err != nil {
		return nil, err
	}
	record, err := s.newRecord(principal.UserID, req.StudentID, req.SubjectID, req.Date, req.LectureTime, req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkBulk records a whole lecture. Either every record is stored or none.
func (s *AttendanceService) MarkBulk(ctx context.Context, principal auth.Principal, req dto.BulkAttendanceRequest) ([]*models.Attendance, error) {
	if !principal.IsTeacher() {
		return nil, apperrors.NewForbiddenError("only teachers can mark attendance")
	}
	if err := ensureAssigned(ctx, s.assignmentRepo, principal, req.SubjectID); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(req.Records))
	records := make([]*models.Attendance, 0, len(req.Records))
	for _, entry := range req.Records {
		if seen[entry.StudentID] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("student %d appears more than once", entry.StudentID))
		}
		seen[entry.StudentID] = true

		record, err := s.newRecord(principal.UserID, entry.StudentID, req.SubjectID, req.Date, req.LectureTime, entry.Status)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := s.attendanceRepo.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("teacher_id", principal.UserID).
		Int64("subject_id", req.SubjectID).
		Int("records", len(records)).
		Msg("Bulk attendance recorded")
	return records, nil
}

// List returns attendance visible to the caller. Teachers without a subject
// filter see what they marked themselves; with one, they must teach it.
func (s *AttendanceService) List(ctx context.Context, principal auth.Principal, filter models.AttendanceFilter) ([]*models.Attendance, int64, error) {
	switch {
	case principal.IsStudent():
		filter.StudentID = principal.UserID
	case principal.IsTeacher():
		if filter.SubjectID != 0 {
			if err := ensureAssigned(ctx, s.assignmentRepo, principal, filter.SubjectID); err != nil {
				return nil, 0, err
			}
		} else {
			filter.TeacherID = principal.UserID
		}
	}
	return s.attendanceRepo.List(ctx, filter)
}

// CheckEditability closes the edit window once 24 hours have passed since
// marking and persists the change. Before that the record is untouched.
func (s *AttendanceService) CheckEditability(ctx context.Context, id int64) (*models.Attendance, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AttendanceService) refresh(ctx context.Context, record *models.Attendance) error {
	if !record.RefreshEditability(s.clock()) {
		return nil
	}
	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return fmt.Errorf("error closing edit window: %w", err)
	}
	s.logger.Debug().Int64("attendance_id", record.ID).Msg("Attendance edit window closed")
	return nil
}

// Update corrects the status of a record inside its edit window. Only the
// teacher who marked it, or an admin, may do so.
func (s *AttendanceService) Update(ctx context.Context, principal auth.Principal, id int64, status string) (*models.Attendance, error) {
	st := models.AttendanceStatus(status)
	if !st.Valid() {
		return nil, apperrors.NewValidationError("status must be PRESENT or ABSENT")
	}

	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !(principal.IsTeacher() && record.TeacherID == principal.UserID) {
		return nil, apperrors.NewForbiddenError("only the teacher who marked this record can change it")
	}

	if err := s.refresh(ctx, record); err != nil {
		return nil, err
	}
	if !record.IsEditable {
		return nil, apperrors.ErrAttendanceNotEditable
	}

	record.Status = st
	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Summary aggregates a student's attendance per subject and overall
func (s *AttendanceService) Summary(ctx context.Context, studentID int64) (*dto.AttendanceSummaryResponse, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	subjects, err := s.attendanceRepo.Summarize(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AttendanceSummaryResponse{StudentID: studentID, Subjects: subjects}
	for _, sub := range subjects {
		resp.Present += sub.Present
		resp.Total += sub.Total
	}
	resp.OverallPercentage = models.AttendancePercentage(resp.Present, resp.Total)
	return resp, nil
}
