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

func TestSendNotification(t *testing.T) {
	f := newFixture(t)
	publisher := &recordingPublisher{}
	svc := services.NewNotificationService(f.repos.Notifications, publisher, f.logger)

	n, err := svc.Send(f.ctx, dto.SendNotificationRequest{
		RecipientType: "TEACHER",
		RecipientID:   f.teacher.ID,
		Title:         "Staff meeting",
		Message:       "Friday 3pm",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSystem, n.Type)
	assert.Equal(t, models.TeacherRecipient(f.teacher.ID), n.Recipient)
	require.Len(t, publisher.published, 1)

	_, err = svc.Send(f.ctx, dto.SendNotificationRequest{RecipientType: "STUDENT", RecipientID: 9999, Title: "x", Message: "y"})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.Send(f.ctx, dto.SendNotificationRequest{RecipientType: "PARENT", RecipientID: 1, Title: "x", Message: "y"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNotificationReadStateIsScopedToRecipient(t *testing.T) {
	f := newFixture(t)
	svc := services.NewNotificationService(f.repos.Notifications, nil, f.logger)
	mine := models.StudentRecipient(f.student.ID)
	theirs := models.StudentRecipient(f.student2.ID)

	var first *models.Notification
	for i := 0; i < 3; i++ {
		n := &models.Notification{Recipient: mine, Type: models.NotificationAnnouncement, Title: "t", Message: "m"}
		require.NoError(t, svc.Notify(f.ctx, n))
		if first == nil {
			first = n
		}
	}

	assert.ErrorIs(t, svc.MarkRead(f.ctx, first.ID, theirs), apperrors.ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(f.ctx, first.ID, mine))

	count, err := svc.CountUnread(f.ctx, mine)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, total, err := svc.List(f.ctx, mine, true, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, unread, 2)

	updated, err := svc.MarkAllRead(f.ctx, mine)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	_, total, err = svc.List(f.ctx, theirs, false, models.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
