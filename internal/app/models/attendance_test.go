package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttendance_RefreshEditability(t *testing.T) {
	markedAt := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		now          time.Time
		wantChanged  bool
		wantEditable bool
	}{
		{name: "right after marking", now: markedAt.Add(time.Minute), wantEditable: true},
		{name: "one second before deadline", now: markedAt.Add(EditWindow - time.Second), wantEditable: true},
		{name: "exactly at deadline", now: markedAt.Add(EditWindow), wantChanged: true},
		{name: "days later", now: markedAt.Add(72 * time.Hour), wantChanged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Attendance{MarkedAt: markedAt, IsEditable: true}
			assert.Equal(t, tt.wantChanged, a.RefreshEditability(tt.now))
			assert.Equal(t, tt.wantEditable, a.IsEditable)
		})
	}
}

func TestAttendance_RefreshEditabilityNeverReopens(t *testing.T) {
	a := &Attendance{MarkedAt: time.Now(), IsEditable: false}
	assert.False(t, a.RefreshEditability(time.Now()))
	assert.False(t, a.IsEditable)
}

func TestAttendancePercentage(t *testing.T) {
	assert.Equal(t, 0.0, AttendancePercentage(0, 0))
	assert.Equal(t, 66.67, AttendancePercentage(2, 3))
	assert.Equal(t, 100.0, AttendancePercentage(5, 5))
}
