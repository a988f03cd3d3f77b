// Package seed creates the default admin account and, optionally, a small
// demo school to click through.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/helpers"
)

// Demo account credentials
const (
	AdminEmail      = "admin@sims.edu"
	AdminPassword   = "admin123"
	TeacherEmail    = "teacher@sims.edu"
	TeacherPassword = "teacher123"
	StudentEmail    = "student@sims.edu"
	StudentPassword = "student123"
)

const (
	demoDays        = 10
	demoLectureTime = "09:00"
)

// Options controls what Run creates
type Options struct {
	DemoData   bool
	BcryptCost int
	Clock      helpers.Clock
}

type demoSubject struct {
	code    string
	name    string
	credits int
}

var demoSubjects = []demoSubject{
	{"CS301", "Data Structures", 4},
	{"CS302", "Database Systems", 4},
	{"CS303", "Operating Systems", 4},
	{"CS304", "Computer Networks", 4},
	{"CS305", "Web Technologies", 3},
}

type seeder struct {
	repos *services.Repositories
	opts  Options
	lgr   zerolog.Logger
}

// Run creates the default admin and, with DemoData set, the demo fixture.
// Rows that already exist are left alone, so Run is safe on every start.
// Failures are collected and returned together; Run keeps going past them.
func Run(ctx context.Context, repos *services.Repositories, opts Options, lgr zerolog.Logger) error {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = auth.BcryptCost
	}
	if opts.Clock == nil {
		opts.Clock = helpers.SystemClock
	}
	s := &seeder{repos: repos, opts: opts, lgr: lgr}

	lgr.Info().Bool("demo_data", opts.DemoData).Msg("Checking/Creating default data...")

	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return err
	}
	if !opts.DemoData {
		return nil
	}
	return s.demo(ctx, admin)
}

func (s *seeder) hash(password string) (string, error) {
	return auth.HashPasswordWithCost(password, s.opts.BcryptCost)
}

func (s *seeder) ensureAdmin(ctx context.Context) (*models.AdminUser, error) {
	admin, err := s.repos.Admins.GetByEmail(ctx, AdminEmail)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		s.lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return nil, err
	}

	hashed, err := s.hash(AdminPassword)
	if err != nil {
		return nil, err
	}
	phone := "1234567890"
	admin = &models.AdminUser{
		Email:    AdminEmail,
		Password: hashed,
		FullName: "System Admin",
		Phone:    &phone,
		IsActive: true,
	}
	if err := s.repos.Admins.Create(ctx, admin); err != nil {
		s.lgr.Error().Err(err).Msg("Error creating default admin user")
		return nil, err
	}
	s.lgr.Info().Str("email", AdminEmail).Msg("Default admin user created")
	return admin, nil
}

func (s *seeder) demo(ctx context.Context, admin *models.AdminUser) error {
	dept, err := s.department(ctx)
	if err != nil {
		return err
	}
	course, err := s.course(ctx, dept.ID)
	if err != nil {
		return err
	}
	semester, err := s.semester(ctx, course.ID)
	if err != nil {
		return err
	}

	var finalErr error
	subjects := make([]*models.Subject, 0, len(demoSubjects))
	for _, ds := range demoSubjects {
		subject, err := s.subject(ctx, semester.ID, ds)
		if err != nil {
			s.lgr.Error().Err(err).Str("code", ds.code).Msg("Error creating demo subject")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		subjects = append(subjects, subject)
	}

	teacher, err := s.teacher(ctx, dept.ID)
	if err != nil {
		return errors.Join(finalErr, err)
	}
	student, err := s.student(ctx, semester.ID)
	if err != nil {
		return errors.Join(finalErr, err)
	}

	taught := subjects
	if len(taught) > 3 {
		taught = taught[:3]
	}
	for _, subject := range taught {
		if err := s.assign(ctx, teacher.ID, subject.ID); err != nil {
			s.lgr.Error().Err(err).Str("subject", subject.Code).Msg("Error assigning demo teacher")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := s.attendance(ctx, teacher.ID, student.ID, subject.ID); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
		if err := s.result(ctx, admin.ID, teacher.ID, student.ID, subject.ID); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := s.communications(ctx, admin.ID); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr == nil {
		s.lgr.Info().Msg("Demo data ready")
	}
	return finalErr
}

func (s *seeder) department(ctx context.Context) (*models.Department, error) {
	all, err := s.repos.Departments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range all {
		if d.Code == "CS" {
			return d, nil
		}
	}
	d := &models.Department{Name: "Computer Science", Code: "CS"}
	if err := s.repos.Departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *seeder) course(ctx context.Context, departmentID int64) (*models.Course, error) {
	const name = "B.Tech Computer Science"
	all, err := s.repos.Courses.List(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, nil
		}
	}
	c := &models.Course{DepartmentID: departmentID, Name: name, DurationYears: 4}
	if err := s.repos.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *seeder) semester(ctx context.Context, courseID int64) (*models.Semester, error) {
	const (
		number = 3
		year   = "2024-2025"
	)
	all, err := s.repos.Semesters.List(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, sem := range all {
		if sem.SemesterNumber == number && sem.AcademicYear == year {
			return sem, nil
		}
	}
	sem := &models.Semester{CourseID: courseID, SemesterNumber: number, AcademicYear: year}
	if err := s.repos.Semesters.Create(ctx, sem); err != nil {
		return nil, err
	}
	return sem, nil
}

func (s *seeder) subject(ctx context.Context, semesterID int64, ds demoSubject) (*models.Subject, error) {
	all, err := s.repos.Subjects.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, sub := range all {
		if sub.Code == ds.code {
			return sub, nil
		}
	}
	sub := &models.Subject{SemesterID: semesterID, Name: ds.name, Code: ds.code, Credits: ds.credits}
	if err := s.repos.Subjects.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *seeder) teacher(ctx context.Context, departmentID int64) (*models.Teacher, error) {
	t, err := s.repos.Teachers.GetByEmail(ctx, TeacherEmail)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	hashed, err := s.hash(TeacherPassword)
	if err != nil {
		return nil, err
	}
	phone := "9876543210"
	t = &models.Teacher{
		Email:        TeacherEmail,
		Password:     hashed,
		FullName:     "Dr. John Smith",
		Phone:        &phone,
		EmployeeID:   "T001",
		DepartmentID: &departmentID,
		IsActive:     true,
	}
	if err := s.repos.Teachers.Create(ctx, t); err != nil {
		return nil, err
	}
	s.lgr.Info().Str("email", TeacherEmail).Msg("Demo teacher created")
	return t, nil
}

func (s *seeder) student(ctx context.Context, semesterID int64) (*models.Student, error) {
	st, err := s.repos.Students.GetByEmail(ctx, StudentEmail)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	hashed, err := s.hash(StudentPassword)
	if err != nil {
		return nil, err
	}
	phone := "5551234567"
	st = &models.Student{
		Email:          StudentEmail,
		Password:       hashed,
		FullName:       "Alice Johnson",
		Phone:          &phone,
		RollNumber:     "CS2021001",
		SemesterID:     &semesterID,
		EnrollmentYear: 2021,
		IsActive:       true,
	}
	if err := s.repos.Students.Create(ctx, st); err != nil {
		return nil, err
	}
	s.lgr.Info().Str("email", StudentEmail).Msg("Demo student created")
	return st, nil
}

func (s *seeder) assign(ctx context.Context, teacherID, subjectID int64) error {
	exists, err := s.repos.Assignments.Exists(ctx, teacherID, subjectID)
	if err != nil || exists {
		return err
	}
	return s.repos.Assignments.Create(ctx, &models.TeacherSubjectAssignment{TeacherID: teacherID, SubjectID: subjectID})
}

// attendance records the last ten days; every third day is an absence
func (s *seeder) attendance(ctx context.Context, teacherID, studentID, subjectID int64) error {
	now := s.opts.Clock()
	today := helpers.DateOnly(now)
	var finalErr error
	for i := 0; i < demoDays; i++ {
		date := today.AddDate(0, 0, -i)
		status := models.AttendancePresent
		if i%3 == 0 {
			status = models.AttendanceAbsent
		}
		record := &models.Attendance{
			StudentID:   studentID,
			SubjectID:   subjectID,
			TeacherID:   teacherID,
			Date:        date,
			LectureTime: demoLectureTime,
			Status:      status,
			MarkedAt:    date.Add(9 * time.Hour),
			IsEditable:  true,
		}
		record.RefreshEditability(now)
		if err := s.repos.Attendance.Create(ctx, record); err != nil && !errors.Is(err, apperrors.ErrAttendanceAlreadyMarked) {
			s.lgr.Error().Err(err).Int64("subject_id", subjectID).Msg("Error creating demo attendance")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

func (s *seeder) result(ctx context.Context, adminID, teacherID, studentID, subjectID int64) error {
	_, err := s.repos.Results.GetByStudentSubject(ctx, studentID, subjectID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrResultNotFound) {
		return err
	}
	r := &models.Result{
		StudentID:          studentID,
		SubjectID:          subjectID,
		InternalMarks:      25,
		ExternalMarks:      60,
		IsPublished:        true,
		EnteredByTeacherID: &teacherID,
		ApprovedByAdminID:  &adminID,
	}
	r.Recompute()
	if err := s.repos.Results.Create(ctx, r); err != nil {
		s.lgr.Error().Err(err).Int64("subject_id", subjectID).Msg("Error creating demo result")
		return err
	}
	return nil
}

func (s *seeder) communications(ctx context.Context, adminID int64) error {
	const (
		eventTitle        = "Annual Tech Fest"
		announcementTitle = "Semester Exams Schedule Released"
	)
	all := models.Page{}

	events, _, err := s.repos.Events.List(ctx, models.EventFilter{Page: all})
	if err != nil {
		return err
	}
	if !containsEvent(events, eventTitle) {
		eventTime := "09:00"
		err := s.repos.Events.Create(ctx, &models.Event{
			Title:            eventTitle,
			Description:      "Three-day technical festival with competitions and workshops",
			EventDate:        helpers.DateOnly(s.opts.Clock()).AddDate(0, 0, 15),
			EventTime:        &eventTime,
			Category:         models.EventCultural,
			Visibility:       models.VisibilityAll,
			CreatedByAdminID: adminID,
		})
		if err != nil {
			return err
		}
	}

	announcements, _, err := s.repos.Announcements.List(ctx, models.AnnouncementFilter{Page: all})
	if err != nil {
		return err
	}
	for _, a := range announcements {
		if a.Title == announcementTitle {
			return nil
		}
	}
	return s.repos.Announcements.Create(ctx, &models.Announcement{
		Title:            announcementTitle,
		Content:          "The examination schedule for Semester 3 has been released. Please check the notice board.",
		Type:             models.AnnouncementExamAlert,
		Visibility:       models.VisibilityAll,
		IsPinned:         true,
		CreatedByAdminID: adminID,
	})
}

func containsEvent(events []*models.Event, title string) bool {
	for _, e := range events {
		if e.Title == title {
			return true
		}
	}
	return false
}
