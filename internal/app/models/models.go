package models

import "strings"

// UserType tags which of the three account tables a principal lives in.
type UserType string

const (
	UserTypeAdmin   UserType = "ADMIN"
	UserTypeTeacher UserType = "TEACHER"
	UserTypeStudent UserType = "STUDENT"
)

// UserTypes lists every role in a stable order.
var UserTypes = []UserType{UserTypeAdmin, UserTypeTeacher, UserTypeStudent}

// Valid reports whether t is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeTeacher, UserTypeStudent:
		return true
	}
	return false
}

// Slug is the lower-case form used in URLs, e.g. /auth/teacher/login.
func (t UserType) Slug() string {
	return strings.ToLower(string(t))
}

// ParseUserType accepts either the tag or its slug.
func ParseUserType(s string) (UserType, bool) {
	t := UserType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Visibility restricts which roles see an event or announcement.
type Visibility string

const (
	VisibilityAll          Visibility = "ALL"
	VisibilityTeachersOnly Visibility = "TEACHERS_ONLY"
	VisibilityStudentsOnly Visibility = "STUDENTS_ONLY"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityAll, VisibilityTeachersOnly, VisibilityStudentsOnly:
		return true
	}
	return false
}

// VisibleTo reports whether content with visibility v is shown to viewer.
// Admins see everything.
func (v Visibility) VisibleTo(viewer UserType) bool {
	for _, allowed := range VisibilitiesFor(viewer) {
		if v == allowed {
			return true
		}
	}
	return false
}

// VisibilitiesFor returns the visibilities a viewer may see. A nil result means
// no restriction.
func VisibilitiesFor(viewer UserType) []Visibility {
	switch viewer {
	case UserTypeAdmin:
		return []Visibility{VisibilityAll, VisibilityTeachersOnly, VisibilityStudentsOnly}
	case UserTypeTeacher:
		return []Visibility{VisibilityAll, VisibilityTeachersOnly}
	case UserTypeStudent:
		return []Visibility{VisibilityAll, VisibilityStudentsOnly}
	}
	return []Visibility{}
}

// Page is a 1-based page request shared by list filters.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Unbounded reports whether the caller wants every row.
func (p Page) Unbounded() bool {
	return p.Size <= 0
}
