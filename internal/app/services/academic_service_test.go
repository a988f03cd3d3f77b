package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func TestAcademicHierarchy(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAcademicService(f.repos, f.clock.Now, f.logger)

	dept, err := svc.CreateDepartment(f.ctx, dto.DepartmentRequest{Name: " Mathematics ", Code: "MA"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", dept.Name)

	_, err = svc.CreateDepartment(f.ctx, dto.DepartmentRequest{Name: "Maths again", Code: "MA"})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentAlreadyExists)

	_, err = svc.CreateCourse(f.ctx, dto.CourseRequest{DepartmentID: 9999, Name: "B.Sc", DurationYears: 3})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)

	course, err := svc.CreateCourse(f.ctx, dto.CourseRequest{DepartmentID: dept.ID, Name: "B.Sc Mathematics", DurationYears: 3})
	require.NoError(t, err)

	sem, err := svc.CreateSemester(f.ctx, dto.SemesterRequest{CourseID: course.ID, SemesterNumber: 1, AcademicYear: "2024-2025"})
	require.NoError(t, err)
	require.NotNil(t, sem.Course)
	assert.Equal(t, course.ID, sem.Course.ID)

	subject, err := svc.CreateSubject(f.ctx, dto.SubjectRequest{SemesterID: sem.ID, Name: "Calculus", Code: "MA101"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSubjectCredits, subject.Credits)

	subjects, err := svc.ListSubjects(f.ctx, sem.ID)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)

	_, err = svc.ListSubjects(f.ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrSemesterNotFound)

	require.NoError(t, svc.DeleteDepartment(f.ctx, dept.ID))
	_, err = svc.GetSubject(f.ctx, subject.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound, "delete cascades down the hierarchy")
}

func TestAssignTeacher(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAcademicService(f.repos, f.clock.Now, f.logger)

	assignment, err := svc.AssignTeacher(f.ctx, dto.AssignmentRequest{TeacherID: f.other.ID, SubjectID: f.subject2.ID})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", assignment.AssignedDate.Format("2006-01-02"))

	_, err = svc.AssignTeacher(f.ctx, dto.AssignmentRequest{TeacherID: f.other.ID, SubjectID: f.subject2.ID})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentExists)

	subjects, err := svc.ListTeacherSubjects(f.ctx, f.other.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, f.subject2.ID, subjects[0].ID)

	require.NoError(t, svc.Unassign(f.ctx, assignment.ID))
	assert.ErrorIs(t, svc.Unassign(f.ctx, assignment.ID), apperrors.ErrAssignmentNotFound)
}
