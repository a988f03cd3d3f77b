package services

import (
	"context"
	"io"

	"github.com/yigit/sims/internal/app/models"
)

// Services depend on the interfaces below. Two implementations exist: the
// Postgres repositories in package repositories and the in-memory ones in
// repositories/memory.

// DepartmentRepository persists departments
type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetAll(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
}

// CourseRepository persists courses. A zero departmentID lists every course.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, departmentID int64) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// SemesterRepository persists semesters. Reads populate Semester.Course.
type SemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id int64) (*models.Semester, error)
	List(ctx context.Context, courseID int64) ([]*models.Semester, error)
	Update(ctx context.Context, semester *models.Semester) error
	Delete(ctx context.Context, id int64) error
}

// SubjectRepository persists subjects
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	List(ctx context.Context, semesterID int64) ([]*models.Subject, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// AssignmentRepository persists teacher to subject assignments
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.TeacherSubjectAssignment) error
	GetByID(ctx context.Context, id int64) (*models.TeacherSubjectAssignment, error)
	Exists(ctx context.Context, teacherID, subjectID int64) (bool, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]*models.TeacherSubjectAssignment, error)
	Delete(ctx context.Context, id int64) error
}

// AdminRepository persists admin accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByID(ctx context.Context, id int64) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	List(ctx context.Context) ([]*models.AdminUser, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// TeacherRepository persists teacher accounts
type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
	List(ctx context.Context, filter models.TeacherFilter) ([]*models.Teacher, int64, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfilePhoto(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// StudentRepository persists student accounts
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfilePhoto(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// PasswordResetTokenRepository persists password reset tokens
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
}

// AttendanceRepository persists attendance records. CreateBatch is atomic:
// either every record is stored or none is.
type AttendanceRepository interface {
	Create(ctx context.Context, record *models.Attendance) error
	CreateBatch(ctx context.Context, records []*models.Attendance) error
	GetByID(ctx context.Context, id int64) (*models.Attendance, error)
	Update(ctx context.Context, record *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, int64, error)
	Summarize(ctx context.Context, studentID int64) ([]*models.AttendanceSubjectSummary, error)
}

// ResultRepository persists results. Create and Update recompute the derived
// fields before writing.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id int64) (*models.Result, error)
	GetByStudentSubject(ctx context.Context, studentID, subjectID int64) (*models.Result, error)
	List(ctx context.Context, filter models.ResultFilter) ([]*models.Result, int64, error)
}

// EventRepository persists events
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

// AnnouncementRepository persists announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	List(ctx context.Context, filter models.AnnouncementFilter) ([]*models.Announcement, int64, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
}

// NotificationRepository persists notifications. Mutations are scoped to the
// recipient so one account can never touch another's notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id int64, recipient models.Recipient) error
	MarkAllRead(ctx context.Context, recipient models.Recipient) (int64, error)
	CountUnread(ctx context.Context, recipient models.Recipient) (int64, error)
}

// Repositories bundles every repository a service may need
type Repositories struct {
	Departments   DepartmentRepository
	Courses       CourseRepository
	Semesters     SemesterRepository
	Subjects      SubjectRepository
	Assignments   AssignmentRepository
	Admins        AdminRepository
	Teachers      TeacherRepository
	Students      StudentRepository
	ResetTokens   PasswordResetTokenRepository
	Attendance    AttendanceRepository
	Results       ResultRepository
	Events        EventRepository
	Announcements AnnouncementRepository
	Notifications NotificationRepository
}

// NotificationPublisher hands persisted notifications to downstream delivery
type NotificationPublisher interface {
	Publish(ctx context.Context, notification *models.Notification) error
}

// Mailer sends transactional e-mail
type Mailer interface {
	SendPasswordResetEmail(toEmail, toName, resetURL string) error
}

// FileStore saves uploaded files and returns a URL to reach them
type FileStore interface {
	Save(ctx context.Context, dir, filename, contentType string, r io.ReadSeeker, size int64) (string, error)
	Delete(ctx context.Context, url string) error
}
