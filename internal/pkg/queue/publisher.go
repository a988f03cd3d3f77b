package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yigit/sims/internal/app/models"
)

// DefaultPrefix is the list name prefix used when none is configured
const DefaultPrefix = "notifications"

// NotificationMessage is the JSON document pushed for push-delivery workers
type NotificationMessage struct {
	ID            int64                   `json:"id"`
	RecipientType models.UserType         `json:"recipient_type"`
	RecipientID   int64                   `json:"recipient_id"`
	Type          models.NotificationType `json:"notification_type"`
	Title         string                  `json:"title"`
	Message       string                  `json:"message"`
	RelatedID     *int64                  `json:"related_id,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewNotificationMessage converts a persisted notification
func NewNotificationMessage(n *models.Notification) NotificationMessage {
	return NotificationMessage{
		ID:            n.ID,
		RecipientType: n.Recipient.Kind,
		RecipientID:   n.Recipient.ID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		RelatedID:     n.RelatedID,
		CreatedAt:     n.CreatedAt,
	}
}

// Producer pushes notifications onto one Redis list per recipient kind,
// e.g. notifications:student.
type Producer struct {
	client *redis.Client
	prefix string
}

// NewProducer creates a Producer on an established client
func NewProducer(redisClient *RedisClient, prefix string) *Producer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Producer{
		client: redisClient.Client(),
		prefix: prefix,
	}
}

// ListKey is the list a notification for kind is pushed onto
func ListKey(prefix string, kind models.UserType) string {
	return fmt.Sprintf("%s:%s", prefix, kind.Slug())
}

// Publish pushes the notification onto its recipient kind's list
func (p *Producer) Publish(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(NewNotificationMessage(n))
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, ListKey(p.prefix, n.Recipient.Kind), data).Err()
}

// NopPublisher discards notifications; used when Redis is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.Notification) error { return nil }

// Publisher hands a persisted notification to one delivery channel
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// Fanout publishes to every publisher in turn. One failing channel does not
// stop the others; their errors are joined.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
