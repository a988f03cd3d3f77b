package memory

import (
	"context"
	"sort"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// NotificationRepository is the in-memory notifications table
type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if !notification.Recipient.Valid() {
		return models.ErrInvalidRecipient
	}
	if !r.s.recipientExists(notification.Recipient) {
		switch notification.Recipient.Kind {
		case models.UserTypeAdmin:
			return apperrors.ErrAdminNotFound
		case models.UserTypeTeacher:
			return apperrors.ErrTeacherNotFound
		default:
			return apperrors.ErrStudentNotFound
		}
	}
	now := r.s.now()
	notification.ID = r.s.nextID("notifications")
	notification.CreatedAt, notification.UpdatedAt = now, now
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) List(_ context.Context, filter models.NotificationFilter) ([]*models.Notification, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Notification{}
	for _, id := range sortedIDs(r.s.notifications) {
		n := r.s.notifications[id]
		if n.Recipient != filter.Recipient {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, &n)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id int64, recipient models.Recipient) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.Recipient != recipient {
		return apperrors.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.UpdatedAt = r.s.now()
		r.s.notifications[id] = n
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipient models.Recipient) (int64, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	var updated int64
	now := r.s.now()
	for id, n := range r.s.notifications {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = now
			r.s.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipient models.Recipient) (int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var count int64
	for _, n := range r.s.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}
