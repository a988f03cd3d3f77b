package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
	"github.com/yigit/sims/internal/pkg/logger"
)

// NotificationRepository handles database operations for notifications.
// The recipient is stored in three nullable FK columns, exactly one set.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var notificationColumns = []string{
	"id", "admin_id", "teacher_id", "student_id", "notification_type", "title", "message",
	"is_read", "related_id", "created_at", "updated_at",
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var adminID, teacherID, studentID *int64
	if err := row.Scan(
		&n.ID, &adminID, &teacherID, &studentID, &n.Type, &n.Title, &n.Message,
		&n.IsRead, &n.RelatedID, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	recipient, err := models.RecipientFromColumns(adminID, teacherID, studentID)
	if err != nil {
		return nil, fmt.Errorf("notification %d: %w", n.ID, err)
	}
	n.Recipient = recipient
	return &n, nil
}

// recipientWhere selects the rows addressed to recipient
func recipientWhere(recipient models.Recipient) squirrel.Eq {
	switch recipient.Kind {
	case models.UserTypeAdmin:
		return squirrel.Eq{"admin_id": recipient.ID}
	case models.UserTypeTeacher:
		return squirrel.Eq{"teacher_id": recipient.ID}
	default:
		return squirrel.Eq{"student_id": recipient.ID}
	}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if !notification.Recipient.Valid() {
		return models.ErrInvalidRecipient
	}
	adminID, teacherID, studentID := notification.Recipient.Columns()
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (admin_id, teacher_id, student_id, notification_type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_read, created_at, updated_at`,
		adminID, teacherID, studentID, notification.Type, notification.Title, notification.Message,
		notification.RelatedID,
	).Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt, &notification.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	sqlStr, args, err := psql.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build notification query: %w", err)
	}
	n, err := scanNotification(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error retrieving notification: %w", err)
	}
	return n, nil
}

// List returns a page of the recipient's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, int64, error) {
	where := squirrel.And{recipientWhere(filter.Recipient)}
	if filter.UnreadOnly {
		where = append(where, squirrel.Eq{"is_read": false})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("notifications").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Notification{}, 0, nil
	}

	q := paged(psql.Select(notificationColumns...).From("notifications").Where(where).
		OrderBy("created_at DESC", "id DESC"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build notification list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning notification row")
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// MarkRead flags one of the recipient's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, recipient models.Recipient) error {
	sqlStr, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.And{squirrel.Eq{"id": id}, recipientWhere(recipient)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient models.Recipient) (int64, error) {
	sqlStr, args, err := psql.Update("notifications").
		Set("is_read", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.And{recipientWhere(recipient), squirrel.Eq{"is_read": false}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread counts the recipient's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient models.Recipient) (int64, error) {
	return count(ctx, r.db, psql.Select("COUNT(*)").From("notifications").
		Where(squirrel.And{recipientWhere(recipient), squirrel.Eq{"is_read": false}}))
}
