package models

import "time"

// EventCategory classifies calendar events
type EventCategory string

const (
	EventAcademic EventCategory = "ACADEMIC"
	EventSports   EventCategory = "SPORTS"
	EventCultural EventCategory = "CULTURAL"
	EventExam     EventCategory = "EXAM"
	EventHoliday  EventCategory = "HOLIDAY"
	EventOther    EventCategory = "OTHER"
)

func (c EventCategory) Valid() bool {
	switch c {
	case EventAcademic, EventSports, EventCultural, EventExam, EventHoliday, EventOther:
		return true
	}
	return false
}

// Event is an admin-authored calendar entry
type Event struct {
	ID               int64
	Title            string
	Description      string
	EventDate        time.Time
	EventTime        *string // "HH:MM", nil for all-day events
	Category         EventCategory
	Visibility       Visibility
	CreatedByAdminID int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EventFilter narrows event listings
type EventFilter struct {
	Visibilities []Visibility
	Category     EventCategory
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         Page
}

// AnnouncementType classifies announcements
type AnnouncementType string

const (
	AnnouncementNotice    AnnouncementType = "NOTICE"
	AnnouncementExamAlert AnnouncementType = "EXAM_ALERT"
	AnnouncementHoliday   AnnouncementType = "HOLIDAY"
	AnnouncementUrgent    AnnouncementType = "URGENT"
	AnnouncementGeneral   AnnouncementType = "GENERAL"
)

func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementNotice, AnnouncementExamAlert, AnnouncementHoliday, AnnouncementUrgent, AnnouncementGeneral:
		return true
	}
	return false
}

// Announcement is an admin-authored notice. Pinned announcements list first.
type Announcement struct {
	ID               int64
	Title            string
	Content          string
	Type             AnnouncementType
	Visibility       Visibility
	IsPinned         bool
	CreatedByAdminID int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AnnouncementFilter narrows announcement listings
type AnnouncementFilter struct {
	Visibilities []Visibility
	Type         AnnouncementType
	Page         Page
}
