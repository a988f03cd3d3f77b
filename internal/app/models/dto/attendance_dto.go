package dto

import (
	"time"

	"github.com/yigit/sims/internal/app/models"
)

const dateLayout = "2006-01-02"

// MarkAttendanceRequest records one student at one lecture
type MarkAttendanceRequest struct {
	StudentID   int64  `json:"student_id" binding:"required,min=1"`
	SubjectID   int64  `json:"subject_id" binding:"required,min=1"`
	Date        string `json:"date" binding:"required,date"`
	LectureTime string `json:"lecture_time" binding:"required,clock"`
	Status      string `json:"status" binding:"required,oneof=PRESENT ABSENT"`
}

// BulkAttendanceEntry is one row of a bulk marking
type BulkAttendanceEntry struct {
	StudentID int64  `json:"student_id" binding:"required,min=1"`
	Status    string `json:"status" binding:"required,oneof=PRESENT ABSENT"`
}

// BulkAttendanceRequest records a whole lecture at once
type BulkAttendanceRequest struct {
	SubjectID   int64                 `json:"subject_id" binding:"required,min=1"`
	Date        string                `json:"date" binding:"required,date"`
	LectureTime string                `json:"lecture_time" binding:"required,clock"`
	Records     []BulkAttendanceEntry `json:"records" binding:"required,min=1,dive"`
}

// UpdateAttendanceRequest corrects the status of an existing record
type UpdateAttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=PRESENT ABSENT"`
}

// AttendanceResponse is the public view of an attendance record
type AttendanceResponse struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	SubjectID     int64     `json:"subject_id"`
	TeacherID     int64     `json:"teacher_id"`
	Date          string    `json:"date"`
	LectureTime   string    `json:"lecture_time"`
	Status        string    `json:"status"`
	MarkedAt      time.Time `json:"marked_at"`
	IsEditable    bool      `json:"is_editable"`
	EditableUntil time.Time `json:"editable_until"`
}

// NewAttendanceResponse converts a model.Attendance
func NewAttendanceResponse(a *models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		StudentID:     a.StudentID,
		SubjectID:     a.SubjectID,
		TeacherID:     a.TeacherID,
		Date:          a.Date.Format(dateLayout),
		LectureTime:   a.LectureTime,
		Status:        string(a.Status),
		MarkedAt:      a.MarkedAt,
		IsEditable:    a.IsEditable,
		EditableUntil: a.EditDeadline(),
	}
}

// NewAttendanceResponses converts a slice
func NewAttendanceResponses(list []*models.Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAttendanceResponse(a))
	}
	return out
}

// EditabilityResponse is returned by check-editability
type EditabilityResponse struct {
	ID            int64     `json:"id"`
	IsEditable    bool      `json:"is_editable"`
	EditableUntil time.Time `json:"editable_until"`
}

// AttendanceSummaryResponse aggregates a student's attendance
type AttendanceSummaryResponse struct {
	StudentID         int64                              `json:"student_id"`
	Subjects          []*models.AttendanceSubjectSummary `json:"subjects"`
	Present           int                                `json:"present"`
	Total             int                                `json:"total"`
	OverallPercentage float64                            `json:"overall_percentage"`
}
