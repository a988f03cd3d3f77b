package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		percentage float64
		want       Grade
	}{
		{100, GradeAPlus},
		{90, GradeAPlus},
		{89.999, GradeA},
		{80, GradeA},
		{79.99, GradeBPlus},
		{70, GradeBPlus},
		{60, GradeB},
		{50, GradeC},
		{40, GradeD},
		{39.999, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.percentage), "percentage %v", tt.percentage)
	}
}

func TestResult_Recompute(t *testing.T) {
	r := &Result{InternalMarks: 25, ExternalMarks: 60}
	r.Recompute()

	assert.Equal(t, 85.0, r.TotalMarks)
	assert.InDelta(t, 85.0, r.Percentage, 1e-9)
	assert.Equal(t, GradeA, r.Grade)
	assert.Equal(t, DefaultMaxInternal, r.MaxInternal)
	assert.Equal(t, DefaultMaxExternal, r.MaxExternal)
	assert.Equal(t, DefaultMaxTotal, r.MaxTotal)
}

func TestResult_RecomputeOverwritesDerivedFields(t *testing.T) {
	r := &Result{InternalMarks: 25, ExternalMarks: 60}
	r.Recompute()

	// stale derived values set by a caller must not survive
	r.TotalMarks = 1
	r.Grade = GradeAPlus
	r.InternalMarks = 10
	r.ExternalMarks = 20
	r.Recompute()

	assert.Equal(t, 30.0, r.TotalMarks)
	assert.InDelta(t, 30.0, r.Percentage, 1e-9)
	assert.Equal(t, GradeF, r.Grade)
}

func TestResult_RecomputeCustomMaxTotal(t *testing.T) {
	r := &Result{InternalMarks: 20, ExternalMarks: 25, MaxInternal: 20, MaxExternal: 30, MaxTotal: 50}
	r.Recompute()

	assert.InDelta(t, 90.0, r.Percentage, 1e-9)
	assert.Equal(t, GradeAPlus, r.Grade)
}

func TestGrade_Passed(t *testing.T) {
	assert.True(t, GradeD.Passed())
	assert.False(t, GradeF.Passed())
}
