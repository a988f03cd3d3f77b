package models

import "time"

// Account is the part of every user record the credential check needs.
// AdminUser, Teacher and Student live in separate tables and share no
// identity row; this interface is the only thing they have in common.
type Account interface {
	AccountID() int64
	AccountEmail() string
	PasswordHash() string
	Active() bool
	Type() UserType
}

// AdminUser is a staff account with full write access
type AdminUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AdminUser) AccountID() int64     { return a.ID }
func (a *AdminUser) AccountEmail() string { return a.Email }
func (a *AdminUser) PasswordHash() string { return a.Password }
func (a *AdminUser) Active() bool         { return a.IsActive }
func (a *AdminUser) Type() UserType       { return UserTypeAdmin }

// Teacher account
type Teacher struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	EmployeeID   string    `json:"employee_id"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	ProfilePhoto *string   `json:"profile_photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Teacher) AccountID() int64     { return t.ID }
func (t *Teacher) AccountEmail() string { return t.Email }
func (t *Teacher) PasswordHash() string { return t.Password }
func (t *Teacher) Active() bool         { return t.IsActive }
func (t *Teacher) Type() UserType       { return UserTypeTeacher }

// Student account
type Student struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	FullName       string    `json:"full_name"`
	Phone          *string   `json:"phone,omitempty"`
	RollNumber     string    `json:"roll_number"`
	SemesterID     *int64    `json:"semester_id,omitempty"`
	EnrollmentYear int       `json:"enrollment_year"`
	IsActive       bool      `json:"is_active"`
	ProfilePhoto   *string   `json:"profile_photo,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Student) AccountID() int64     { return s.ID }
func (s *Student) AccountEmail() string { return s.Email }
func (s *Student) PasswordHash() string { return s.Password }
func (s *Student) Active() bool         { return s.IsActive }
func (s *Student) Type() UserType       { return UserTypeStudent }

// TeacherFilter narrows teacher listings
type TeacherFilter struct {
	DepartmentID int64
	IsActive     *bool
	Search       string
	Page         Page
}

// StudentFilter narrows student listings
type StudentFilter struct {
	SemesterID     int64
	EnrollmentYear int
	IsActive       *bool
	Search         string
	Page           Page
}
