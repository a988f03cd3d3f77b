package models

import (
	"errors"
	"time"
)

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationEventReminder   NotificationType = "EVENT_REMINDER"
	NotificationResultPublished NotificationType = "RESULT_PUBLISHED"
	NotificationAttendanceLow   NotificationType = "ATTENDANCE_LOW"
	NotificationAnnouncement    NotificationType = "ANNOUNCEMENT"
	NotificationSystem          NotificationType = "SYSTEM"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationEventReminder, NotificationResultPublished, NotificationAttendanceLow,
		NotificationAnnouncement, NotificationSystem:
		return true
	}
	return false
}

// ErrInvalidRecipient is returned when the stored recipient columns are not one-hot.
var ErrInvalidRecipient = errors.New("notification must have exactly one recipient")

// Recipient identifies exactly one account across the three user tables.
type Recipient struct {
	Kind UserType `json:"kind"`
	ID   int64    `json:"id"`
}

func AdminRecipient(id int64) Recipient   { return Recipient{Kind: UserTypeAdmin, ID: id} }
func TeacherRecipient(id int64) Recipient { return Recipient{Kind: UserTypeTeacher, ID: id} }
func StudentRecipient(id int64) Recipient { return Recipient{Kind: UserTypeStudent, ID: id} }

func (r Recipient) Valid() bool {
	return r.Kind.Valid() && r.ID > 0
}

// Columns splits the recipient into the admin_id, teacher_id and student_id
// foreign keys, exactly one of which is non-nil.
func (r Recipient) Columns() (adminID, teacherID, studentID *int64) {
	id := r.ID
	switch r.Kind {
	case UserTypeAdmin:
		adminID = &id
	case UserTypeTeacher:
		teacherID = &id
	case UserTypeStudent:
		studentID = &id
	}
	return adminID, teacherID, studentID
}

// RecipientFromColumns is the inverse of Columns.
func RecipientFromColumns(adminID, teacherID, studentID *int64) (Recipient, error) {
	var (
		r   Recipient
		set int
	)
	if adminID != nil {
		r, set = AdminRecipient(*adminID), set+1
	}
	if teacherID != nil {
		r, set = TeacherRecipient(*teacherID), set+1
	}
	if studentID != nil {
		r, set = StudentRecipient(*studentID), set+1
	}
	if set != 1 {
		return Recipient{}, ErrInvalidRecipient
	}
	return r, nil
}

// Notification is a message addressed to a single account
type Notification struct {
	ID        int64
	Recipient Recipient
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	RelatedID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationFilter narrows a recipient's notification listing
type NotificationFilter struct {
	Recipient  Recipient
	UnreadOnly bool
	Page       Page
}
