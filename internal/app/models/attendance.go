package models

import "time"

// EditWindow is how long after marking an attendance record may be corrected.
const EditWindow = 24 * time.Hour

// AttendanceStatus is PRESENT or ABSENT
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// Attendance is one student's presence at one lecture. The natural key is
// (student, subject, date, lecture time).
type Attendance struct {
	ID          int64
	StudentID   int64
	SubjectID   int64
	TeacherID   int64
	Date        time.Time // calendar date, time part ignored
	LectureTime string    // "HH:MM"
	Status      AttendanceStatus
	MarkedAt    time.Time
	IsEditable  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EditDeadline is the instant the record stops being editable.
func (a *Attendance) EditDeadline() time.Time {
	return a.MarkedAt.Add(EditWindow)
}

// RefreshEditability flips IsEditable to false once now has reached the edit
// deadline. It never turns editing back on. The return value reports whether
// the record changed and therefore needs persisting.
func (a *Attendance) RefreshEditability(now time.Time) bool {
	if !a.IsEditable {
		return false
	}
	if now.Before(a.EditDeadline()) {
		return false
	}
	a.IsEditable = false
	return true
}

// AttendanceFilter narrows attendance listings; zero values are ignored.
type AttendanceFilter struct {
	StudentID int64
	SubjectID int64
	TeacherID int64
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    AttendanceStatus
	Page      Page
}

// AttendanceSubjectSummary aggregates one student's attendance in one subject.
type AttendanceSubjectSummary struct {
	SubjectID   int64   `json:"subject_id"`
	SubjectCode string  `json:"subject_code"`
	SubjectName string  `json:"subject_name"`
	Present     int     `json:"present"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
}

// ComputePercentage fills Percentage from Present and Total.
func (s *AttendanceSubjectSummary) ComputePercentage() {
	s.Percentage = AttendancePercentage(s.Present, s.Total)
}

// AttendancePercentage returns present/total as a percentage rounded to two
// decimals, or 0 when nothing has been recorded.
func AttendancePercentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo2(float64(present) * 100 / float64(total))
}
