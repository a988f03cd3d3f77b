package services_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func newResultService(f *fixture, publisher services.NotificationPublisher) *services.ResultService {
	notifier := services.NewNotificationService(f.repos.Notifications, publisher, f.logger)
	return services.NewResultService(f.repos, notifier, f.logger)
}

func marks(v float64) *float64 { return &v }

func (f *fixture) saveRequest(internal, external float64) dto.SaveResultRequest {
	return dto.SaveResultRequest{
		StudentID:     f.student.ID,
		SubjectID:     f.subject.ID,
		InternalMarks: marks(internal),
		ExternalMarks: marks(external),
	}
}

func TestSaveResultComputesGrade(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, nil)

	result, created, err := svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(25, 60))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 85.0, result.TotalMarks)
	assert.InDelta(t, 85.0, result.Percentage, 1e-9)
	assert.Equal(t, models.GradeA, result.Grade)
	require.NotNil(t, result.EnteredByTeacherID)
	assert.Equal(t, f.teacher.ID, *result.EnteredByTeacherID)

	// saving again recomputes from the latest marks
	result, created, err = svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(10, 20))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 30.0, result.TotalMarks)
	assert.Equal(t, models.GradeF, result.Grade)
}

func TestSaveResultValidation(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, nil)

	tests := []struct {
		name    string
		req     dto.SaveResultRequest
		wantErr error
	}{
		{"internal above max", f.saveRequest(31, 10), apperrors.ErrValidationFailed},
		{"external above max", f.saveRequest(10, 71), apperrors.ErrValidationFailed},
		{"negative", f.saveRequest(-1, 10), apperrors.ErrValidationFailed},
		{"not a number", f.saveRequest(math.NaN(), 10), apperrors.ErrValidationFailed},
		{"infinite", f.saveRequest(10, math.Inf(1)), apperrors.ErrValidationFailed},
		{"unknown student", dto.SaveResultRequest{StudentID: 9999, SubjectID: f.subject.ID, InternalMarks: marks(1), ExternalMarks: marks(1)}, apperrors.ErrStudentNotFound},
		{"unassigned subject", dto.SaveResultRequest{StudentID: f.student.ID, SubjectID: f.subject2.ID, InternalMarks: marks(1), ExternalMarks: marks(1)}, apperrors.ErrNotAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Save(f.ctx, f.teacherPrincipal(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApprovePublishFlow(t *testing.T) {
	f := newFixture(t)
	publisher := &recordingPublisher{}
	svc := newResultService(f, publisher)

	result, _, err := svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(28, 65))
	require.NoError(t, err)

	_, err = svc.Publish(f.ctx, result.ID)
	assert.ErrorIs(t, err, apperrors.ErrResultNotApproved)

	approved, err := svc.Approve(f.ctx, f.adminPrincipal(), result.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved())

	// editing an approved result withdraws the approval
	_, _, err = svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(28, 66))
	require.NoError(t, err)
	_, err = svc.Publish(f.ctx, result.ID)
	assert.ErrorIs(t, err, apperrors.ErrResultNotApproved)

	_, err = svc.Approve(f.ctx, f.adminPrincipal(), result.ID)
	require.NoError(t, err)
	published, err := svc.Publish(f.ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	// idempotent: no second notification
	_, err = svc.Publish(f.ctx, result.ID)
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	n := publisher.published[0]
	assert.Equal(t, models.NotificationResultPublished, n.Type)
	assert.Equal(t, models.StudentRecipient(f.student.ID), n.Recipient)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, result.ID, *n.RelatedID)

	_, _, err = svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(1, 1))
	assert.ErrorIs(t, err, apperrors.ErrResultPublished)

	unpublished, err := svc.Unpublish(f.ctx, result.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished)
}

func TestPublishSurvivesPublisherFailure(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, &recordingPublisher{err: errors.New("redis down")})

	result, _, err := svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(20, 50))
	require.NoError(t, err)
	_, err = svc.Approve(f.ctx, f.adminPrincipal(), result.ID)
	require.NoError(t, err)
	_, err = svc.Publish(f.ctx, result.ID)
	require.NoError(t, err)

	count, err := f.repos.Notifications.CountUnread(f.ctx, models.StudentRecipient(f.student.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListResultsByRole(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, nil)

	first, _, err := svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(20, 50))
	require.NoError(t, err)
	_, _, err = svc.Save(f.ctx, f.adminPrincipal(), dto.SaveResultRequest{
		StudentID: f.student.ID, SubjectID: f.subject2.ID, InternalMarks: marks(15), ExternalMarks: marks(40),
	})
	require.NoError(t, err)

	_, total, err := svc.List(f.ctx, f.adminPrincipal(), models.ResultFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	list, total, err := svc.List(f.ctx, f.teacherPrincipal(), models.ResultFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.subject.ID, list[0].SubjectID)

	_, total, err = svc.List(f.ctx, f.otherTeacherPrincipal(), models.ResultFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	// students only ever see published results
	_, total, err = svc.ListOwn(f.ctx, f.studentPrincipal(), models.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = svc.Approve(f.ctx, f.adminPrincipal(), first.ID)
	require.NoError(t, err)
	_, err = svc.Publish(f.ctx, first.ID)
	require.NoError(t, err)

	own, total, err := svc.ListOwn(f.ctx, f.studentPrincipal(), models.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, own[0].ID)
}

func marksWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"roll_number", "internal_marks", "external_marks", "remarks"}))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportResults(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, nil)

	wb := marksWorkbook(t, [][]interface{}{
		{f.student.RollNumber, 25, 60, "good"},
		{f.student2.RollNumber, 40, 60, ""},
		{"UNKNOWN", 10, 10, ""},
		{f.student2.RollNumber, "abc", 10, ""},
		{f.student2.RollNumber, "NaN", "60", ""},
		{f.student2.RollNumber, "10", "-Inf", ""},
	})
	report, err := svc.Import(f.ctx, f.teacherPrincipal(), f.subject.ID, wb)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 5, report.Failed)
	require.Len(t, report.Errors, 5)
	assert.Equal(t, 6, report.Errors[1].Row)
	assert.Contains(t, report.Errors[1].Error, "internal_marks must be a finite number")
	assert.Equal(t, 7, report.Errors[2].Row)
	assert.Contains(t, report.Errors[2].Error, "external_marks must be a finite number")

	_, err = f.repos.Results.GetByStudentSubject(f.ctx, f.student2.ID, f.subject.ID)
	assert.ErrorIs(t, err, apperrors.ErrResultNotFound)

	result, err := f.repos.Results.GetByStudentSubject(f.ctx, f.student.ID, f.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, result.Grade)
	require.NotNil(t, result.Remarks)
	assert.Equal(t, "good", *result.Remarks)

	_, err = svc.Import(f.ctx, f.teacherPrincipal(), f.subject.ID, bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Import(f.ctx, f.otherTeacherPrincipal(), f.subject.ID, marksWorkbook(t, nil))
	assert.ErrorIs(t, err, apperrors.ErrNotAssigned)
}

func TestExportThenImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	svc := newResultService(f, nil)

	_, _, err := svc.Save(f.ctx, f.teacherPrincipal(), f.saveRequest(25, 60))
	require.NoError(t, err)

	data, filename, err := svc.Export(f.ctx, f.teacherPrincipal(), f.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "results_cs301.xlsx", filename)

	report, err := svc.Import(f.ctx, f.teacherPrincipal(), f.subject.ID, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Zero(t, report.Failed)
}
