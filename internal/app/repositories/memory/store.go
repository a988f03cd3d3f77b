// Package memory implements every repository on top of process memory. It
// backs the "memory" database driver and the test suites. Unique keys and
// foreign key actions mirror migrations/001_init.sql.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/services"
)

// Store holds all tables behind a single lock so cascades stay consistent.
type Store struct {
	mutex sync.RWMutex
	now   func() time.Time

	pk map[string]int64

	departments   map[int64]models.Department
	courses       map[int64]models.Course
	semesters     map[int64]models.Semester
	subjects      map[int64]models.Subject
	assignments   map[int64]models.TeacherSubjectAssignment
	admins        map[int64]models.AdminUser
	teachers      map[int64]models.Teacher
	students      map[int64]models.Student
	resetTokens   map[int64]models.PasswordResetToken
	attendance    map[int64]models.Attendance
	results       map[int64]models.Result
	events        map[int64]models.Event
	announcements map[int64]models.Announcement
	notifications map[int64]models.Notification
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:           func() time.Time { return time.Now().UTC() },
		pk:            make(map[string]int64),
		departments:   make(map[int64]models.Department),
		courses:       make(map[int64]models.Course),
		semesters:     make(map[int64]models.Semester),
		subjects:      make(map[int64]models.Subject),
		assignments:   make(map[int64]models.TeacherSubjectAssignment),
		admins:        make(map[int64]models.AdminUser),
		teachers:      make(map[int64]models.Teacher),
		students:      make(map[int64]models.Student),
		resetTokens:   make(map[int64]models.PasswordResetToken),
		attendance:    make(map[int64]models.Attendance),
		results:       make(map[int64]models.Result),
		events:        make(map[int64]models.Event),
		announcements: make(map[int64]models.Announcement),
		notifications: make(map[int64]models.Notification),
	}
}

// WithClock replaces the timestamp source
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Repositories wires one store into every repository interface
func (s *Store) Repositories() *services.Repositories {
	return &services.Repositories{
		Departments:   &DepartmentRepository{s},
		Courses:       &CourseRepository{s},
		Semesters:     &SemesterRepository{s},
		Subjects:      &SubjectRepository{s},
		Assignments:   &AssignmentRepository{s},
		Admins:        &AdminRepository{s},
		Teachers:      &TeacherRepository{s},
		Students:      &StudentRepository{s},
		ResetTokens:   &PasswordResetTokenRepository{s},
		Attendance:    &AttendanceRepository{s},
		Results:       &ResultRepository{s},
		Events:        &EventRepository{s},
		Announcements: &AnnouncementRepository{s},
		Notifications: &NotificationRepository{s},
	}
}

func (s *Store) nextID(table string) int64 {
	s.pk[table]++
	return s.pk[table]
}

// sortedIDs returns map keys in ascending order
func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// paginate applies a page to a fully filtered slice
func paginate[T any](items []T, page models.Page) []T {
	if page.Unbounded() {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Cascades. Callers hold the write lock.

func (s *Store) deleteDepartment(id int64) {
	delete(s.departments, id)
	for cid, c := range s.courses {
		if c.DepartmentID == id {
			s.deleteCourse(cid)
		}
	}
	for tid, t := range s.teachers {
		if t.DepartmentID != nil && *t.DepartmentID == id {
			t.DepartmentID = nil
			s.teachers[tid] = t
		}
	}
}

func (s *Store) deleteCourse(id int64) {
	delete(s.courses, id)
	for sid, sem := range s.semesters {
		if sem.CourseID == id {
			s.deleteSemester(sid)
		}
	}
}

func (s *Store) deleteSemester(id int64) {
	delete(s.semesters, id)
	for sid, sub := range s.subjects {
		if sub.SemesterID == id {
			s.deleteSubject(sid)
		}
	}
	for sid, st := range s.students {
		if st.SemesterID != nil && *st.SemesterID == id {
			st.SemesterID = nil
			s.students[sid] = st
		}
	}
}

func (s *Store) deleteSubject(id int64) {
	delete(s.subjects, id)
	for aid, a := range s.assignments {
		if a.SubjectID == id {
			delete(s.assignments, aid)
		}
	}
	for aid, a := range s.attendance {
		if a.SubjectID == id {
			delete(s.attendance, aid)
		}
	}
	for rid, r := range s.results {
		if r.SubjectID == id {
			delete(s.results, rid)
		}
	}
}

func (s *Store) deleteTeacher(id int64) {
	delete(s.teachers, id)
	for aid, a := range s.assignments {
		if a.TeacherID == id {
			delete(s.assignments, aid)
		}
	}
	for aid, a := range s.attendance {
		if a.TeacherID == id {
			delete(s.attendance, aid)
		}
	}
	for rid, r := range s.results {
		if r.EnteredByTeacherID != nil && *r.EnteredByTeacherID == id {
			r.EnteredByTeacherID = nil
			s.results[rid] = r
		}
	}
	s.deleteNotificationsFor(models.TeacherRecipient(id))
}

func (s *Store) deleteStudent(id int64) {
	delete(s.students, id)
	for aid, a := range s.attendance {
		if a.StudentID == id {
			delete(s.attendance, aid)
		}
	}
	for rid, r := range s.results {
		if r.StudentID == id {
			delete(s.results, rid)
		}
	}
	s.deleteNotificationsFor(models.StudentRecipient(id))
}

func (s *Store) deleteNotificationsFor(recipient models.Recipient) {
	for nid, n := range s.notifications {
		if n.Recipient == recipient {
			delete(s.notifications, nid)
		}
	}
}

// recipientExists checks the foreign key behind a notification recipient
func (s *Store) recipientExists(r models.Recipient) bool {
	switch r.Kind {
	case models.UserTypeAdmin:
		_, ok := s.admins[r.ID]
		return ok
	case models.UserTypeTeacher:
		_, ok := s.teachers[r.ID]
		return ok
	case models.UserTypeStudent:
		_, ok := s.students[r.ID]
		return ok
	}
	return false
}
