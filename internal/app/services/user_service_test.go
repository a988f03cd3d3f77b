package services_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
)

func newUserService(f *fixture, store services.FileStore) *services.UserService {
	return services.NewUserService(f.repos, store, testCost, f.logger)
}

func TestCreateTeacherHashesPasswordAndNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f, newMemoryFileStore())

	teacher, err := svc.CreateTeacher(f.ctx, dto.CreateTeacherRequest{
		Email:      "  New.Teacher@SIMS.edu ",
		Password:   "secret123",
		FullName:   "New Teacher",
		EmployeeID: "EMP100",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.teacher@sims.edu", teacher.Email)
	assert.True(t, teacher.IsActive)
	assert.True(t, auth.CheckPassword(teacher.Password, "secret123"))

	_, err = svc.CreateTeacher(f.ctx, dto.CreateTeacherRequest{
		Email: "new.teacher@sims.edu", Password: "secret123", FullName: "Dup", EmployeeID: "EMP101",
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
}

func TestUpdateStudentPartial(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f, newMemoryFileStore())

	name := "Renamed Student"
	active := false
	updated, err := svc.UpdateStudent(f.ctx, f.student.ID, dto.UpdateStudentRequest{FullName: &name, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.False(t, updated.IsActive)
	assert.Equal(t, f.student.RollNumber, updated.RollNumber)

	roll := f.student2.RollNumber
	_, err = svc.UpdateStudent(f.ctx, f.student.ID, dto.UpdateStudentRequest{RollNumber: &roll})
	assert.ErrorIs(t, err, apperrors.ErrRollNumberAlreadyExists)

	_, err = svc.UpdateStudent(f.ctx, 9999, dto.UpdateStudentRequest{FullName: &name})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestProfileUsesRoleView(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f, newMemoryFileStore())

	view, err := svc.Profile(f.ctx, f.teacherPrincipal())
	require.NoError(t, err)
	teacher, ok := view.(dto.TeacherResponse)
	require.True(t, ok)
	assert.Equal(t, "Computer Science", teacher.DepartmentName)

	view, err = svc.Profile(f.ctx, f.studentPrincipal())
	require.NoError(t, err)
	student, ok := view.(dto.StudentResponse)
	require.True(t, ok)
	assert.Equal(t, f.student.RollNumber, student.RollNumber)
	assert.NotEmpty(t, student.SemesterInfo)
}

func TestUpdatePhoto(t *testing.T) {
	f := newFixture(t)
	store := newMemoryFileStore()
	svc := newUserService(f, store)

	upload := func(contentType string, data []byte) services.PhotoUpload {
		return services.PhotoUpload{
			Filename:    "me.png",
			ContentType: contentType,
			Size:        int64(len(data)),
			Content:     bytes.NewReader(data),
		}
	}

	_, err := svc.UpdatePhoto(f.ctx, f.adminPrincipal(), upload("image/png", []byte("png")))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.UpdatePhoto(f.ctx, f.studentPrincipal(), upload("application/pdf", []byte("pdf")))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	first, err := svc.UpdatePhoto(f.ctx, f.studentPrincipal(), upload("image/png", []byte("first")))
	require.NoError(t, err)
	assert.Contains(t, first, "profile_photos/students")

	second, err := svc.UpdatePhoto(f.ctx, f.studentPrincipal(), upload("image/jpeg; charset=binary", []byte("second")))
	require.NoError(t, err)

	stored, err := f.repos.Students.GetByID(f.ctx, f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfilePhoto)
	assert.Equal(t, second, *stored.ProfilePhoto)
	assert.Equal(t, []string{first}, store.deleted)
}

func TestDeleteTeacherRemovesAssignments(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f, newMemoryFileStore())

	require.NoError(t, svc.DeleteTeacher(f.ctx, f.teacher.ID))
	assignments, err := f.repos.Assignments.List(f.ctx, models.AssignmentFilter{SubjectID: f.subject.ID})
	require.NoError(t, err)
	assert.Empty(t, assignments)

	assert.ErrorIs(t, svc.DeleteTeacher(f.ctx, f.teacher.ID), apperrors.ErrTeacherNotFound)
}
