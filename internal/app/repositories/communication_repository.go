package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/dberrors"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

var eventColumns = []string{
	"id", "title", "description", "event_date", "to_char(event_time, 'HH24:MI')",
	"category", "visibility", "created_by_admin_id", "created_at", "updated_at",
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.EventDate, &e.EventTime,
		&e.Category, &e.Visibility, &e.CreatedByAdminID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO events (title, description, event_date, event_time, category, visibility, created_by_admin_id)
		VALUES ($1, $2, $3, $4::text::time, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		event.Title, event.Description, event.EventDate, event.EventTime,
		event.Category, event.Visibility, event.CreatedByAdminID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sqlStr, args, err := psql.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}
	event, err := scanEvent(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return event, nil
}

// List returns a page of events in calendar order
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int64, error) {
	where := squirrel.And{}
	if filter.Visibilities != nil {
		where = append(where, squirrel.Eq{"visibility": visibilityStrings(filter.Visibilities)})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"category": filter.Category})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"event_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"event_date": *filter.DateTo})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("events").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Event{}, 0, nil
	}

	q := paged(psql.Select(eventColumns...).From("events").Where(where).
		OrderBy("event_date", "event_time NULLS LAST", "id"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build event list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, event)
	}
	return events, total, rows.Err()
}

// Update modifies an event; the author never changes
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	err := r.db.QueryRow(ctx, `
		UPDATE events
		SET title = $1, description = $2, event_date = $3, event_time = $4::text::time,
		    category = $5, visibility = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_by_admin_id, created_at, updated_at`,
		event.Title, event.Description, event.EventDate, event.EventTime,
		event.Category, event.Visibility, event.ID,
	).Scan(&event.CreatedByAdminID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrEventNotFound
		}
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	db *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

var announcementColumns = []string{
	"id", "title", "content", "announcement_type", "visibility", "is_pinned",
	"created_by_admin_id", "created_at", "updated_at",
}

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	var a models.Announcement
	if err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Type, &a.Visibility, &a.IsPinned,
		&a.CreatedByAdminID, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO announcements (title, content, announcement_type, visibility, is_pinned, created_by_admin_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		announcement.Title, announcement.Content, announcement.Type, announcement.Visibility,
		announcement.IsPinned, announcement.CreatedByAdminID,
	).Scan(&announcement.ID, &announcement.CreatedAt, &announcement.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return translateForeignKey(err)
		}
		return fmt.Errorf("error creating announcement: %w", err)
	}
	return nil
}

// GetByID retrieves an announcement
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sqlStr, args, err := psql.Select(announcementColumns...).From("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build announcement query: %w", err)
	}
	announcement, err := scanAnnouncement(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}
	return announcement, nil
}

// List returns a page of announcements, pinned first then newest first
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	where := squirrel.And{}
	if filter.Visibilities != nil {
		where = append(where, squirrel.Eq{"visibility": visibilityStrings(filter.Visibilities)})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"announcement_type": filter.Type})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("announcements").Where(where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Announcement{}, 0, nil
	}

	q := paged(psql.Select(announcementColumns...).From("announcements").Where(where).
		OrderBy("is_pinned DESC", "created_at DESC", "id DESC"), filter.Page)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build announcement list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	announcements := []*models.Announcement{}
	for rows.Next() {
		announcement, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning announcement: %w", err)
		}
		announcements = append(announcements, announcement)
	}
	return announcements, total, rows.Err()
}

// Update modifies an announcement; the author never changes
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	err := r.db.QueryRow(ctx, `
		UPDATE announcements
		SET title = $1, content = $2, announcement_type = $3, visibility = $4, is_pinned = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING created_by_admin_id, created_at, updated_at`,
		announcement.Title, announcement.Content, announcement.Type, announcement.Visibility,
		announcement.IsPinned, announcement.ID,
	).Scan(&announcement.CreatedByAdminID, &announcement.CreatedAt, &announcement.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrAnnouncementNotFound
		}
		return fmt.Errorf("error updating announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// visibilityStrings lets squirrel expand the slice into an IN list
func visibilityStrings(vs []models.Visibility) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
