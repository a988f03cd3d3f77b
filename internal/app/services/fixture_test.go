package services_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/repositories/memory"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/auth"
)

const (
	testCost     = 4
	testPassword = "password123"
)

// testClock is a settable clock shared by the store and the services
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	ctx      context.Context
	clock    *testClock
	store    *memory.Store
	repos    *services.Repositories
	logger   zerolog.Logger
	admin    *models.AdminUser
	teacher  *models.Teacher
	other    *models.Teacher
	student  *models.Student
	student2 *models.Student
	subject  *models.Subject
	subject2 *models.Subject
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPasswordWithCost(password, testCost)
	require.NoError(t, err)
	return h
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := newTestClock()
	store := memory.NewStore().WithClock(clock.Now)
	repos := store.Repositories()
	pw := hash(t, testPassword)

	dept := &models.Department{Name: "Computer Science", Code: "CS"}
	require.NoError(t, repos.Departments.Create(ctx, dept))
	course := &models.Course{DepartmentID: dept.ID, Name: "B.Tech Computer Science", DurationYears: 4}
	require.NoError(t, repos.Courses.Create(ctx, course))
	sem := &models.Semester{CourseID: course.ID, SemesterNumber: 3, AcademicYear: "2024-2025"}
	require.NoError(t, repos.Semesters.Create(ctx, sem))
	sub := &models.Subject{SemesterID: sem.ID, Name: "Data Structures", Code: "CS301", Credits: 4}
	require.NoError(t, repos.Subjects.Create(ctx, sub))
	sub2 := &models.Subject{SemesterID: sem.ID, Name: "Operating Systems", Code: "CS302", Credits: 4}
	require.NoError(t, repos.Subjects.Create(ctx, sub2))

	admin := &models.AdminUser{Email: "admin@sims.edu", Password: pw, FullName: "Admin", IsActive: true}
	require.NoError(t, repos.Admins.Create(ctx, admin))
	teacher := &models.Teacher{Email: "teacher@sims.edu", Password: pw, FullName: "Ada Teacher", EmployeeID: "EMP001", DepartmentID: &dept.ID, IsActive: true}
	require.NoError(t, repos.Teachers.Create(ctx, teacher))
	other := &models.Teacher{Email: "other@sims.edu", Password: pw, FullName: "Other Teacher", EmployeeID: "EMP002", DepartmentID: &dept.ID, IsActive: true}
	require.NoError(t, repos.Teachers.Create(ctx, other))
	student := &models.Student{Email: "student@sims.edu", Password: pw, FullName: "Sam Student", RollNumber: "CS2023001", SemesterID: &sem.ID, EnrollmentYear: 2023, IsActive: true}
	require.NoError(t, repos.Students.Create(ctx, student))
	student2 := &models.Student{Email: "student2@sims.edu", Password: pw, FullName: "Kim Student", RollNumber: "CS2023002", SemesterID: &sem.ID, EnrollmentYear: 2023, IsActive: true}
	require.NoError(t, repos.Students.Create(ctx, student2))

	require.NoError(t, repos.Assignments.Create(ctx, &models.TeacherSubjectAssignment{TeacherID: teacher.ID, SubjectID: sub.ID, AssignedDate: clock.Now()}))

	return &fixture{
		ctx:      ctx,
		clock:    clock,
		store:    store,
		repos:    repos,
		logger:   zerolog.Nop(),
		admin:    admin,
		teacher:  teacher,
		other:    other,
		student:  student,
		student2: student2,
		subject:  sub,
		subject2: sub2,
	}
}

func (f *fixture) adminPrincipal() auth.Principal {
	return auth.Principal{UserID: f.admin.ID, UserType: models.UserTypeAdmin, Email: f.admin.Email}
}

func (f *fixture) teacherPrincipal() auth.Principal {
	return auth.Principal{UserID: f.teacher.ID, UserType: models.UserTypeTeacher, Email: f.teacher.Email}
}

func (f *fixture) otherTeacherPrincipal() auth.Principal {
	return auth.Principal{UserID: f.other.ID, UserType: models.UserTypeTeacher, Email: f.other.Email}
}

func (f *fixture) studentPrincipal() auth.Principal {
	return auth.Principal{UserID: f.student.ID, UserType: models.UserTypeStudent, Email: f.student.Email}
}

// recordingPublisher captures published notifications
type recordingPublisher struct {
	published []*models.Notification
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, n *models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

// recordingMailer captures reset links instead of sending mail
type recordingMailer struct {
	to    []string
	links []string
}

func (m *recordingMailer) SendPasswordResetEmail(toEmail, _ string, resetURL string) error {
	m.to = append(m.to, toEmail)
	m.links = append(m.links, resetURL)
	return nil
}

// memoryFileStore keeps uploads in a map keyed by URL
type memoryFileStore struct {
	files   map[string][]byte
	deleted []string
	saved   int
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{files: map[string][]byte{}}
}

func (s *memoryFileStore) Save(_ context.Context, dir, filename, _ string, r io.ReadSeeker, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved++
	url := fmt.Sprintf("/uploads/%s/%d-%s", dir, s.saved, filename)
	s.files[url] = data
	return url, nil
}

func (s *memoryFileStore) Delete(_ context.Context, url string) error {
	delete(s.files, url)
	s.deleted = append(s.deleted, url)
	return nil
}
