package models

import (
	"fmt"
	"time"
)

// DefaultSubjectCredits is applied when a subject is created without credits.
const DefaultSubjectCredits = 4

// Department groups courses and teachers
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Course is a degree programme offered by a department
type Course struct {
	ID            int64     `json:"id"`
	DepartmentID  int64     `json:"department_id"`
	Name          string    `json:"name"`
	DurationYears int       `json:"duration_years"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Department *Department `json:"department,omitempty"`
}

// Semester is one term of a course in a given academic year
type Semester struct {
	ID             int64     `json:"id"`
	CourseID       int64     `json:"course_id"`
	SemesterNumber int       `json:"semester_number"`
	AcademicYear   string    `json:"academic_year"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Course *Course `json:"course,omitempty"`
}

// Label renders the semester the way it is shown on student profiles,
// e.g. "Semester 3 - B.Tech Computer Science".
func (s *Semester) Label() string {
	if s.Course != nil {
		return fmt.Sprintf("Semester %d - %s", s.SemesterNumber, s.Course.Name)
	}
	return fmt.Sprintf("Semester %d", s.SemesterNumber)
}

// Subject is taught within a semester
type Subject struct {
	ID         int64     `json:"id"`
	SemesterID int64     `json:"semester_id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Credits    int       `json:"credits"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TeacherSubjectAssignment links a teacher to a subject they teach
type TeacherSubjectAssignment struct {
	ID           int64     `json:"id"`
	TeacherID    int64     `json:"teacher_id"`
	SubjectID    int64     `json:"subject_id"`
	AssignedDate time.Time `json:"assigned_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AssignmentFilter narrows assignment listings; zero values are ignored.
type AssignmentFilter struct {
	TeacherID int64
	SubjectID int64
}
