package dto

import (
	"time"

	"github.com/yigit/sims/internal/app/models"
)

// SaveResultRequest enters or updates marks for one student in one subject.
// Derived fields are not accepted.
type SaveResultRequest struct {
	StudentID     int64    `json:"student_id" binding:"required,min=1"`
	SubjectID     int64    `json:"subject_id" binding:"required,min=1"`
	InternalMarks *float64 `json:"internal_marks" binding:"required,min=0"`
	ExternalMarks *float64 `json:"external_marks" binding:"required,min=0"`
	MaxInternal   int      `json:"max_internal" binding:"omitempty,min=1"`
	MaxExternal   int      `json:"max_external" binding:"omitempty,min=1"`
	MaxTotal      int      `json:"max_total" binding:"omitempty,min=1"`
	Remarks       *string  `json:"remarks" binding:"omitempty,max=1000"`
}

// ResultResponse is the public view of a result
type ResultResponse struct {
	ID                 int64     `json:"id"`
	StudentID          int64     `json:"student_id"`
	SubjectID          int64     `json:"subject_id"`
	InternalMarks      float64   `json:"internal_marks"`
	ExternalMarks      float64   `json:"external_marks"`
	TotalMarks         float64   `json:"total_marks"`
	MaxInternal        int       `json:"max_internal"`
	MaxExternal        int       `json:"max_external"`
	MaxTotal           int       `json:"max_total"`
	Percentage         float64   `json:"percentage"`
	Grade              string    `json:"grade"`
	IsPublished        bool      `json:"is_published"`
	IsApproved         bool      `json:"is_approved"`
	Remarks            *string   `json:"remarks,omitempty"`
	EnteredByTeacherID *int64    `json:"entered_by_teacher_id,omitempty"`
	ApprovedByAdminID  *int64    `json:"approved_by_admin_id,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewResultResponse converts a model.Result
func NewResultResponse(r *models.Result) ResultResponse {
	return ResultResponse{
		ID:                 r.ID,
		StudentID:          r.StudentID,
		SubjectID:          r.SubjectID,
		InternalMarks:      r.InternalMarks,
		ExternalMarks:      r.ExternalMarks,
		TotalMarks:         r.TotalMarks,
		MaxInternal:        r.MaxInternal,
		MaxExternal:        r.MaxExternal,
		MaxTotal:           r.MaxTotal,
		Percentage:         r.Percentage,
		Grade:              string(r.Grade),
		IsPublished:        r.IsPublished,
		IsApproved:         r.Approved(),
		Remarks:            r.Remarks,
		EnteredByTeacherID: r.EnteredByTeacherID,
		ApprovedByAdminID:  r.ApprovedByAdminID,
		UpdatedAt:          r.UpdatedAt,
	}
}

// NewResultResponses converts a slice
func NewResultResponses(list []*models.Result) []ResultResponse {
	out := make([]ResultResponse, 0, len(list))
	for _, r := range list {
		out = append(out, NewResultResponse(r))
	}
	return out
}

// ImportRowError reports one spreadsheet row that could not be saved
type ImportRowError struct {
	Row        int    `json:"row"`
	RollNumber string `json:"roll_number,omitempty"`
	Error      string `json:"error"`
}

// ImportReport summarises a spreadsheet import
type ImportReport struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}
