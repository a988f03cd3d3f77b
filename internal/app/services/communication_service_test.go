package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func TestEventDefaultsAndVisibility(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCommunicationService(f.repos, f.logger)

	open, err := svc.CreateEvent(f.ctx, f.adminPrincipal(), dto.EventRequest{
		Title: "Sports Day", Description: "Annual meet", EventDate: "2024-10-05",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventOther, open.Category)
	assert.Equal(t, models.VisibilityAll, open.Visibility)
	assert.Nil(t, open.EventTime)
	assert.Equal(t, f.admin.ID, open.CreatedByAdminID)

	staff := "14:30"
	staffOnly, err := svc.CreateEvent(f.ctx, f.adminPrincipal(), dto.EventRequest{
		Title: "Faculty meeting", Description: "Staff room", EventDate: "2024-10-01",
		EventTime: &staff, Category: "ACADEMIC", Visibility: "TEACHERS_ONLY",
	})
	require.NoError(t, err)
	require.NotNil(t, staffOnly.EventTime)
	assert.Equal(t, "14:30", *staffOnly.EventTime)

	events, total, err := svc.ListEvents(f.ctx, f.teacherPrincipal(), models.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, staffOnly.ID, events[0].ID, "ordered by date")

	_, total, err = svc.ListEvents(f.ctx, f.studentPrincipal(), models.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = svc.GetEvent(f.ctx, f.studentPrincipal(), staffOnly.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	_, err = svc.GetEvent(f.ctx, f.adminPrincipal(), staffOnly.ID)
	assert.NoError(t, err)
}

func TestUpdateEventKeepsAuthor(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCommunicationService(f.repos, f.logger)

	event, err := svc.CreateEvent(f.ctx, f.adminPrincipal(), dto.EventRequest{Title: "Exam", Description: "Mid-term", EventDate: "2024-11-01"})
	require.NoError(t, err)

	updated, err := svc.UpdateEvent(f.ctx, event.ID, dto.EventRequest{Title: "Exam (moved)", Description: "Mid-term", EventDate: "2024-11-08", Category: "EXAM"})
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, updated.CreatedByAdminID)
	assert.Equal(t, models.EventExam, updated.Category)

	_, err = svc.UpdateEvent(f.ctx, event.ID, dto.EventRequest{Title: "x", Description: "y", EventDate: "08/11/2024"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.DeleteEvent(f.ctx, event.ID))
	assert.ErrorIs(t, svc.DeleteEvent(f.ctx, event.ID), apperrors.ErrEventNotFound)
}

func TestAnnouncementsPinnedFirst(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCommunicationService(f.repos, f.logger)

	general, err := svc.CreateAnnouncement(f.ctx, f.adminPrincipal(), dto.AnnouncementRequest{Title: "Library hours", Content: "Open till 8"})
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementGeneral, general.Type)

	f.clock.Advance(1)
	pinned, err := svc.CreateAnnouncement(f.ctx, f.adminPrincipal(), dto.AnnouncementRequest{
		Title: "Exam schedule", Content: "See portal", AnnouncementType: "EXAM_ALERT", Visibility: "STUDENTS_ONLY", IsPinned: true,
	})
	require.NoError(t, err)

	f.clock.Advance(1)
	latest, err := svc.CreateAnnouncement(f.ctx, f.adminPrincipal(), dto.AnnouncementRequest{Title: "Holiday", Content: "Closed Monday", AnnouncementType: "HOLIDAY"})
	require.NoError(t, err)

	list, total, err := svc.ListAnnouncements(f.ctx, f.studentPrincipal(), models.AnnouncementFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	assert.Equal(t, []int64{pinned.ID, latest.ID, general.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	_, total, err = svc.ListAnnouncements(f.ctx, f.teacherPrincipal(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = svc.ListAnnouncements(f.ctx, f.adminPrincipal(), models.AnnouncementFilter{Type: models.AnnouncementHoliday})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
