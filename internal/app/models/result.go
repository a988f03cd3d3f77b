package models

import (
	"math"
	"time"
)

// Default mark scheme
const (
	DefaultMaxInternal = 30
	DefaultMaxExternal = 70
	DefaultMaxTotal    = 100
)

// Grade is the letter grade derived from a result's percentage
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// gradeBreakpoints are checked top-down; each lower bound is inclusive.
var gradeBreakpoints = []struct {
	min   float64
	grade Grade
}{
	{90, GradeAPlus},
	{80, GradeA},
	{70, GradeBPlus},
	{60, GradeB},
	{50, GradeC},
	{40, GradeD},
}

// GradeFor maps a percentage onto a letter grade.
func GradeFor(percentage float64) Grade {
	for _, bp := range gradeBreakpoints {
		if percentage >= bp.min {
			return bp.grade
		}
	}
	return GradeF
}

// Passed reports whether the grade counts as a pass.
func (g Grade) Passed() bool {
	return g != GradeF && g != ""
}

// Result holds one student's marks in one subject. TotalMarks, Percentage and
// Grade are derived and overwritten by Recompute on every save.
type Result struct {
	ID                 int64
	StudentID          int64
	SubjectID          int64
	InternalMarks      float64
	ExternalMarks      float64
	TotalMarks         float64
	MaxInternal        int
	MaxExternal        int
	MaxTotal           int
	Percentage         float64
	Grade              Grade
	IsPublished        bool
	Remarks            *string
	EnteredByTeacherID *int64
	ApprovedByAdminID  *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ApplyDefaults fills in the default mark scheme for unset maxima.
func (r *Result) ApplyDefaults() {
	if r.MaxInternal == 0 {
		r.MaxInternal = DefaultMaxInternal
	}
	if r.MaxExternal == 0 {
		r.MaxExternal = DefaultMaxExternal
	}
	if r.MaxTotal == 0 {
		r.MaxTotal = DefaultMaxTotal
	}
}

// Recompute derives total, percentage and grade from the current marks.
func (r *Result) Recompute() {
	r.ApplyDefaults()
	r.TotalMarks = r.InternalMarks + r.ExternalMarks
	r.Percentage = r.TotalMarks * 100 / float64(r.MaxTotal)
	r.Grade = GradeFor(r.Percentage)
}

// Approved reports whether an admin has signed the result off.
func (r *Result) Approved() bool {
	return r.ApprovedByAdminID != nil
}

// ResultFilter narrows result listings; zero values are ignored.
type ResultFilter struct {
	StudentID   int64
	SubjectID   int64
	SubjectIDs  []int64
	IsPublished *bool
	Page        Page
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
