package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
)

func TestListKey(t *testing.T) {
	assert.Equal(t, "notifications:student", ListKey(DefaultPrefix, models.UserTypeStudent))
	assert.Equal(t, "sims:teacher", ListKey("sims", models.UserTypeTeacher))
}

func TestNotificationMessageEncoding(t *testing.T) {
	related := int64(12)
	n := &models.Notification{
		ID:        3,
		Recipient: models.StudentRecipient(9),
		Type:      models.NotificationResultPublished,
		Title:     "Result published",
		Message:   "CS301: A",
		RelatedID: &related,
		CreatedAt: time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(NewNotificationMessage(n))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "STUDENT", decoded["recipient_type"])
	assert.EqualValues(t, 9, decoded["recipient_id"])
	assert.Equal(t, "RESULT_PUBLISHED", decoded["notification_type"])
	assert.EqualValues(t, 12, decoded["related_id"])
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), &models.Notification{}))
}

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context, *models.Notification) error {
	p.calls++
	return p.err
}

func TestFanoutPublishesToEveryChannel(t *testing.T) {
	broken := &countingPublisher{err: errors.New("redis down")}
	healthy := &countingPublisher{}

	err := Fanout{broken, NopPublisher{}, healthy}.Publish(context.Background(), &models.Notification{})

	assert.ErrorContains(t, err, "redis down")
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, healthy.calls)
}
