package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/validation"
)

// CommunicationService manages events and announcements. Reads are filtered
// by the caller's role; an item the caller may not see does not exist for them.
type CommunicationService struct {
	eventRepo        EventRepository
	announcementRepo AnnouncementRepository
	logger           zerolog.Logger
}

// NewCommunicationService creates a new CommunicationService
func NewCommunicationService(repos *Repositories, logger zerolog.Logger) *CommunicationService {
	return &CommunicationService{
		eventRepo:        repos.Events,
		announcementRepo: repos.Announcements,
		logger:           logger,
	}
}

func visibilityOrDefault(raw string) (models.Visibility, error) {
	if raw == "" {
		return models.VisibilityAll, nil
	}
	v := models.Visibility(raw)
	if !v.Valid() {
		return "", apperrors.NewValidationError("visibility must be ALL, TEACHERS_ONLY or STUDENTS_ONLY")
	}
	return v, nil
}

func (s *CommunicationService) eventFromRequest(req dto.EventRequest) (*models.Event, error) {
	day, err := validation.ParseDate(req.EventDate)
	if err != nil {
		return nil, apperrors.NewValidationError("event_date must be in YYYY-MM-DD format")
	}
	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		EventDate:   day,
		Category:    models.EventOther,
	}
	if req.EventTime != nil && *req.EventTime != "" {
		clock, err := validation.ParseClock(*req.EventTime)
		if err != nil {
			return nil, apperrors.NewValidationError("event_time must be in HH:MM format")
		}
		event.EventTime = &clock
	}
	if req.Category != "" {
		event.Category = models.EventCategory(req.Category)
		if !event.Category.Valid() {
			return nil, apperrors.NewValidationError("unknown event category")
		}
	}
	if event.Visibility, err = visibilityOrDefault(req.Visibility); err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent creates an event authored by the calling admin
func (s *CommunicationService) CreateEvent(ctx context.Context, principal auth.Principal, req dto.EventRequest) (*models.Event, error) {
	event, err := s.eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	event.CreatedByAdminID = principal.UserID
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("event_id", event.ID).Str("category", string(event.Category)).Msg("Event created")
	return event, nil
}

// GetEvent returns an event if the caller may see it
func (s *CommunicationService) GetEvent(ctx context.Context, principal auth.Principal, id int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.Visibility.VisibleTo(principal.UserType) {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// ListEvents lists events visible to the caller
func (s *CommunicationService) ListEvents(ctx context.Context, principal auth.Principal, filter models.EventFilter) ([]*models.Event, int64, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, apperrors.NewValidationError("unknown event category")
	}
	filter.Visibilities = models.VisibilitiesFor(principal.UserType)
	return s.eventRepo.List(ctx, filter)
}

// UpdateEvent replaces an event's content; the author is kept
func (s *CommunicationService) UpdateEvent(ctx context.Context, id int64, req dto.EventRequest) (*models.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	event.ID = id
	event.CreatedByAdminID = existing.CreatedByAdminID
	event.CreatedAt = existing.CreatedAt
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent deletes an event
func (s *CommunicationService) DeleteEvent(ctx context.Context, id int64) error {
	return s.eventRepo.Delete(ctx, id)
}

func (s *CommunicationService) announcementFromRequest(req dto.AnnouncementRequest) (*models.Announcement, error) {
	a := &models.Announcement{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Type:     models.AnnouncementGeneral,
		IsPinned: req.IsPinned,
	}
	if req.AnnouncementType != "" {
		a.Type = models.AnnouncementType(req.AnnouncementType)
		if !a.Type.Valid() {
			return nil, apperrors.NewValidationError("unknown announcement type")
		}
	}
	var err error
	if a.Visibility, err = visibilityOrDefault(req.Visibility); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAnnouncement creates an announcement authored by the calling admin
func (s *CommunicationService) CreateAnnouncement(ctx context.Context, principal auth.Principal, req dto.AnnouncementRequest) (*models.Announcement, error) {
	a, err := s.announcementFromRequest(req)
	if err != nil {
		return nil, err
	}
	a.CreatedByAdminID = principal.UserID
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("announcement_id", a.ID).Bool("pinned", a.IsPinned).Msg("Announcement created")
	return a, nil
}

// GetAnnouncement returns an announcement if the caller may see it
func (s *CommunicationService) GetAnnouncement(ctx context.Context, principal auth.Principal, id int64) (*models.Announcement, error) {
	a, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Visibility.VisibleTo(principal.UserType) {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return a, nil
}

// ListAnnouncements lists announcements visible to the caller, pinned first
func (s *CommunicationService) ListAnnouncements(ctx context.Context, principal auth.Principal, filter models.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, apperrors.NewValidationError("unknown announcement type")
	}
	filter.Visibilities = models.VisibilitiesFor(principal.UserType)
	return s.announcementRepo.List(ctx, filter)
}

// UpdateAnnouncement replaces an announcement's content
func (s *CommunicationService) UpdateAnnouncement(ctx context.Context, id int64, req dto.AnnouncementRequest) (*models.Announcement, error) {
	existing, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := s.announcementFromRequest(req)
	if err != nil {
		return nil, err
	}
	a.ID = id
	a.CreatedByAdminID = existing.CreatedByAdminID
	a.CreatedAt = existing.CreatedAt
	if err := s.announcementRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnnouncement deletes an announcement
func (s *CommunicationService) DeleteAnnouncement(ctx context.Context, id int64) error {
	return s.announcementRepo.Delete(ctx, id)
}
