package dto

import (
	"time"

	"github.com/yigit/sims/internal/app/models"
)

// EventRequest creates or replaces an event
type EventRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	EventDate   string  `json:"event_date" binding:"required,date"`
	EventTime   *string `json:"event_time" binding:"omitempty,clock"`
	Category    string  `json:"category" binding:"omitempty,oneof=ACADEMIC SPORTS CULTURAL EXAM HOLIDAY OTHER"`
	Visibility  string  `json:"visibility" binding:"omitempty,oneof=ALL TEACHERS_ONLY STUDENTS_ONLY"`
}

// EventResponse is the public view of an event
type EventResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EventDate        string    `json:"event_date"`
	EventTime        *string   `json:"event_time,omitempty"`
	Category         string    `json:"category"`
	Visibility       string    `json:"visibility"`
	CreatedByAdminID int64     `json:"created_by_admin_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewEventResponse converts a model.Event
func NewEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		EventDate:        e.EventDate.Format(dateLayout),
		EventTime:        e.EventTime,
		Category:         string(e.Category),
		Visibility:       string(e.Visibility),
		CreatedByAdminID: e.CreatedByAdminID,
		CreatedAt:        e.CreatedAt,
	}
}

// NewEventResponses converts a slice
func NewEventResponses(list []*models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, NewEventResponse(e))
	}
	return out
}

// AnnouncementRequest creates or replaces an announcement
type AnnouncementRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Content          string `json:"content" binding:"required"`
	AnnouncementType string `json:"announcement_type" binding:"omitempty,oneof=NOTICE EXAM_ALERT HOLIDAY URGENT GENERAL"`
	Visibility       string `json:"visibility" binding:"omitempty,oneof=ALL TEACHERS_ONLY STUDENTS_ONLY"`
	IsPinned         bool   `json:"is_pinned"`
}

// AnnouncementResponse is the public view of an announcement
type AnnouncementResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	AnnouncementType string    `json:"announcement_type"`
	Visibility       string    `json:"visibility"`
	IsPinned         bool      `json:"is_pinned"`
	CreatedByAdminID int64     `json:"created_by_admin_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewAnnouncementResponse converts a model.Announcement
func NewAnnouncementResponse(a *models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:               a.ID,
		Title:            a.Title,
		Content:          a.Content,
		AnnouncementType: string(a.Type),
		Visibility:       string(a.Visibility),
		IsPinned:         a.IsPinned,
		CreatedByAdminID: a.CreatedByAdminID,
		CreatedAt:        a.CreatedAt,
	}
}

// NewAnnouncementResponses converts a slice
func NewAnnouncementResponses(list []*models.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAnnouncementResponse(a))
	}
	return out
}
