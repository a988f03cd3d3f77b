package memory

import (
	"context"
	"sort"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func visibilityAllowed(v models.Visibility, allowed []models.Visibility) bool {
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// EventRepository is the in-memory events table
type EventRepository struct{ s *Store }

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.admins[event.CreatedByAdminID]; !ok {
		return apperrors.ErrAdminNotFound
	}
	now := r.s.now()
	event.ID = r.s.nextID("events")
	event.CreatedAt, event.UpdatedAt = now, now
	r.s.events[event.ID] = *event
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return &e, nil
}

func (r *EventRepository) List(_ context.Context, filter models.EventFilter) ([]*models.Event, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Event{}
	for _, id := range sortedIDs(r.s.events) {
		e := r.s.events[id]
		if !visibilityAllowed(e.Visibility, filter.Visibilities) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		day := dateOnly(e.EventDate)
		if filter.DateFrom != nil && day.Before(dateOnly(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && day.After(dateOnly(*filter.DateTo)) {
			continue
		}
		matched = append(matched, &e)
	}
	// Postgres sorts NULL event_time last in ascending order.
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		switch {
		case a.EventTime == nil:
			return false
		case b.EventTime == nil:
			return true
		}
		return *a.EventTime < *b.EventTime
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.events[event.ID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	event.CreatedByAdminID = existing.CreatedByAdminID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.s.now()
	r.s.events[event.ID] = *event
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

// AnnouncementRepository is the in-memory announcements table
type AnnouncementRepository struct{ s *Store }

func (r *AnnouncementRepository) Create(_ context.Context, announcement *models.Announcement) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.admins[announcement.CreatedByAdminID]; !ok {
		return apperrors.ErrAdminNotFound
	}
	now := r.s.now()
	announcement.ID = r.s.nextID("announcements")
	announcement.CreatedAt, announcement.UpdatedAt = now, now
	r.s.announcements[announcement.ID] = *announcement
	return nil
}

func (r *AnnouncementRepository) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	a, ok := r.s.announcements[id]
	if !ok {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return &a, nil
}

func (r *AnnouncementRepository) List(_ context.Context, filter models.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Announcement{}
	for _, id := range sortedIDs(r.s.announcements) {
		a := r.s.announcements[id]
		if !visibilityAllowed(a.Visibility, filter.Visibilities) {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		matched = append(matched, &a)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *AnnouncementRepository) Update(_ context.Context, announcement *models.Announcement) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.announcements[announcement.ID]
	if !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	announcement.CreatedByAdminID = existing.CreatedByAdminID
	announcement.CreatedAt = existing.CreatedAt
	announcement.UpdatedAt = r.s.now()
	r.s.announcements[announcement.ID] = *announcement
	return nil
}

func (r *AnnouncementRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.announcements[id]; !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	delete(r.s.announcements, id)
	return nil
}
