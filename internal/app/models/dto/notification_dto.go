package dto

import (
	"time"

	"github.com/yigit/sims/internal/app/models"
)

// SendNotificationRequest lets an admin message a single account
type SendNotificationRequest struct {
	RecipientType    string `json:"recipient_type" binding:"required,oneof=ADMIN TEACHER STUDENT"`
	RecipientID      int64  `json:"recipient_id" binding:"required,min=1"`
	NotificationType string `json:"notification_type" binding:"omitempty,oneof=EVENT_REMINDER RESULT_PUBLISHED ATTENDANCE_LOW ANNOUNCEMENT SYSTEM"`
	Title            string `json:"title" binding:"required,max=200"`
	Message          string `json:"message" binding:"required"`
	RelatedID        *int64 `json:"related_id" binding:"omitempty,min=1"`
}

// NotificationResponse is the public view of a notification
type NotificationResponse struct {
	ID               int64            `json:"id"`
	Recipient        models.Recipient `json:"recipient"`
	NotificationType string           `json:"notification_type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	IsRead           bool             `json:"is_read"`
	RelatedID        *int64           `json:"related_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewNotificationResponse converts a model.Notification
func NewNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		Recipient:        n.Recipient,
		NotificationType: string(n.Type),
		Title:            n.Title,
		Message:          n.Message,
		IsRead:           n.IsRead,
		RelatedID:        n.RelatedID,
		CreatedAt:        n.CreatedAt,
	}
}

// NewNotificationResponses converts a slice
func NewNotificationResponses(list []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}

// CountResponse carries a single number
type CountResponse struct {
	Count int64 `json:"count"`
}
