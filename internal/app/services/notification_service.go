package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// NotificationService stores notifications and hands them to the publisher
type NotificationService struct {
	notificationRepo NotificationRepository
	publisher        NotificationPublisher
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo NotificationRepository, publisher NotificationPublisher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// Notify persists n and then publishes it. A publish failure is logged and
// does not fail the call: the stored notification is the source of truth.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if !n.Recipient.Valid() {
		return apperrors.NewValidationError("notification recipient is invalid")
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if !n.Type.Valid() {
		return apperrors.NewValidationError("unknown notification type")
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Int64("notification_id", n.ID).
				Str("recipient_type", string(n.Recipient.Kind)).
				Msg("Failed to publish notification")
		}
	}
	return nil
}

// Send lets an admin address a notification to any account
func (s *NotificationService) Send(ctx context.Context, req dto.SendNotificationRequest) (*models.Notification, error) {
	kind, ok := models.ParseUserType(req.RecipientType)
	if !ok {
		return nil, apperrors.NewValidationError("recipient_type must be one of: ADMIN TEACHER STUDENT")
	}
	n := &models.Notification{
		Recipient: models.Recipient{Kind: kind, ID: req.RecipientID},
		Type:      models.NotificationType(req.NotificationType),
		Title:     req.Title,
		Message:   req.Message,
		RelatedID: req.RelatedID,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a page of the recipient's notifications
func (s *NotificationService) List(ctx context.Context, recipient models.Recipient, unreadOnly bool, page models.Page) ([]*models.Notification, int64, error) {
	return s.notificationRepo.List(ctx, models.NotificationFilter{
		Recipient:  recipient,
		UnreadOnly: unreadOnly,
		Page:       page,
	})
}

// MarkRead marks one notification read. Notifications of other accounts are
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, recipient models.Recipient) error {
	return s.notificationRepo.MarkRead(ctx, id, recipient)
}

// MarkAllRead marks every notification of the recipient read
func (s *NotificationService) MarkAllRead(ctx context.Context, recipient models.Recipient) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, recipient)
}

// CountUnread counts the recipient's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, recipient models.Recipient) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipient)
}
