package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func newAttendanceService(f *fixture) *services.AttendanceService {
	return services.NewAttendanceService(f.repos, f.clock.Now, f.logger)
}

func (f *fixture) markRequest(status string) dto.MarkAttendanceRequest {
	return dto.MarkAttendanceRequest{
		StudentID:   f.student.ID,
		SubjectID:   f.subject.ID,
		Date:        "2024-09-02",
		LectureTime: "09:00",
		Status:      status,
	}
}

func TestMarkAttendance(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	record, err := svc.Mark(f.ctx, f.teacherPrincipal(), f.markRequest("PRESENT"))
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.True(t, record.IsEditable)
	assert.Equal(t, f.clock.Now(), record.MarkedAt)
	assert.Equal(t, f.teacher.ID, record.TeacherID)
	assert.Equal(t, "09:00", record.LectureTime)

	_, err = svc.Mark(f.ctx, f.teacherPrincipal(), f.markRequest("ABSENT"))
	assert.ErrorIs(t, err, apperrors.ErrAttendanceAlreadyMarked)
}

func TestMarkAttendanceRequiresAssignment(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	_, err := svc.Mark(f.ctx, f.otherTeacherPrincipal(), f.markRequest("PRESENT"))
	assert.ErrorIs(t, err, apperrors.ErrNotAssigned)

	_, err = svc.Mark(f.ctx, f.studentPrincipal(), f.markRequest("PRESENT"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestMarkBulkIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	req := dto.BulkAttendanceRequest{
		SubjectID:   f.subject.ID,
		Date:        "2024-09-02",
		LectureTime: "11:00",
		Records: []dto.BulkAttendanceEntry{
			{StudentID: f.student.ID, Status: "PRESENT"},
			{StudentID: 9999, Status: "ABSENT"},
		},
	}
	_, err := svc.MarkBulk(f.ctx, f.teacherPrincipal(), req)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, total, err := svc.List(f.ctx, f.adminPrincipal(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	req.Records[1].StudentID = f.student2.ID
	records, err := svc.MarkBulk(f.ctx, f.teacherPrincipal(), req)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	req.Records = append(req.Records, dto.BulkAttendanceEntry{StudentID: f.student.ID, Status: "ABSENT"})
	_, err = svc.MarkBulk(f.ctx, f.teacherPrincipal(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCheckEditability(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		editable bool
	}{
		{"just marked", 0, true},
		{"one second before deadline", 24*time.Hour - time.Second, true},
		{"exactly at deadline", 24 * time.Hour, false},
		{"long after", 72 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newAttendanceService(f)

			record, err := svc.Mark(f.ctx, f.teacherPrincipal(), f.markRequest("PRESENT"))
			require.NoError(t, err)

			f.clock.Advance(tt.elapsed)
			checked, err := svc.CheckEditability(f.ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.editable, checked.IsEditable)

			stored, err := f.repos.Attendance.GetByID(f.ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.editable, stored.IsEditable, "flip must be persisted")
		})
	}
}

func TestUpdateAttendance(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	record, err := svc.Mark(f.ctx, f.teacherPrincipal(), f.markRequest("PRESENT"))
	require.NoError(t, err)

	_, err = svc.Update(f.ctx, f.otherTeacherPrincipal(), record.ID, "ABSENT")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := svc.Update(f.ctx, f.teacherPrincipal(), record.ID, "ABSENT")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAbsent, updated.Status)

	f.clock.Advance(25 * time.Hour)
	_, err = svc.Update(f.ctx, f.teacherPrincipal(), record.ID, "PRESENT")
	assert.ErrorIs(t, err, apperrors.ErrAttendanceNotEditable)

	_, err = svc.Update(f.ctx, f.adminPrincipal(), record.ID, "PRESENT")
	assert.ErrorIs(t, err, apperrors.ErrAttendanceNotEditable)

	stored, err := f.repos.Attendance.GetByID(f.ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsEditable)
	assert.Equal(t, models.AttendanceAbsent, stored.Status)
}

func TestListAttendanceScopesByRole(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	_, err := svc.Mark(f.ctx, f.teacherPrincipal(), f.markRequest("PRESENT"))
	require.NoError(t, err)
	req := f.markRequest("ABSENT")
	req.StudentID = f.student2.ID
	_, err = svc.Mark(f.ctx, f.teacherPrincipal(), req)
	require.NoError(t, err)

	_, total, err := svc.List(f.ctx, f.studentPrincipal(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(f.ctx, f.teacherPrincipal(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = svc.List(f.ctx, f.otherTeacherPrincipal(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = svc.List(f.ctx, f.otherTeacherPrincipal(), models.AttendanceFilter{SubjectID: f.subject.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotAssigned)
}

func TestAttendanceSummary(t *testing.T) {
	f := newFixture(t)
	svc := newAttendanceService(f)

	for i, status := range []string{"PRESENT", "PRESENT", "ABSENT"} {
		req := f.markRequest(status)
		req.LectureTime = []string{"09:00", "10:00", "11:00"}[i]
		_, err := svc.Mark(f.ctx, f.teacherPrincipal(), req)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Present)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 66.67, summary.OverallPercentage, 0.001)
	require.Len(t, summary.Subjects, 1)
	assert.Equal(t, f.subject.ID, summary.Subjects[0].SubjectID)

	_, err = svc.Summary(f.ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
