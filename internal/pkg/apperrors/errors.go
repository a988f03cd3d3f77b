package apperrors

import "errors"

// Categories. HandleAPIError maps these to HTTP status codes, and every
// domain error below unwraps to exactly one of them.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Academic hierarchy
var (
	ErrDepartmentNotFound      = NewResourceNotFoundError("department not found")
	ErrDepartmentAlreadyExists = NewAlreadyExistsError("department with this code already exists")
	ErrCourseNotFound          = NewResourceNotFoundError("course not found")
	ErrSemesterNotFound        = NewResourceNotFoundError("semester not found")
	ErrSemesterAlreadyExists   = NewAlreadyExistsError("semester with this number and academic year already exists for the course")
	ErrSubjectNotFound         = NewResourceNotFoundError("subject not found")
	ErrSubjectAlreadyExists    = NewAlreadyExistsError("subject with this code already exists")
	ErrAssignmentNotFound      = NewResourceNotFoundError("teacher subject assignment not found")
	ErrAssignmentExists        = NewAlreadyExistsError("teacher is already assigned to this subject")
)

// Identity
var (
	ErrAdminNotFound            = NewResourceNotFoundError("admin not found")
	ErrTeacherNotFound          = NewResourceNotFoundError("teacher not found")
	ErrStudentNotFound          = NewResourceNotFoundError("student not found")
	ErrEmailAlreadyExists       = NewAlreadyExistsError("email already exists")
	ErrEmployeeIDAlreadyExists  = NewAlreadyExistsError("employee ID already exists")
	ErrRollNumberAlreadyExists  = NewAlreadyExistsError("roll number already exists")
	ErrPasswordResetTokenExists = NewAlreadyExistsError("password reset token already exists")
)

// Password reset
var (
	ErrInvalidPasswordResetToken = NewBadRequestError("invalid or expired password reset token")
	ErrPasswordResetTokenUsed    = NewBadRequestError("password reset token has already been used")
)

// Attendance
var (
	ErrAttendanceNotFound      = NewResourceNotFoundError("attendance record not found")
	ErrAttendanceAlreadyMarked = NewAlreadyExistsError("attendance already marked for this student, subject, date and lecture time")
	ErrAttendanceNotEditable   = NewConflictError("attendance record can no longer be edited")
)

// Results
var (
	ErrResultNotFound      = NewResourceNotFoundError("result not found")
	ErrResultAlreadyExists = NewAlreadyExistsError("result already exists for this student and subject")
	ErrResultPublished     = NewConflictError("result is published and cannot be modified")
	ErrResultNotApproved   = NewConflictError("result must be approved before publishing")
)

// Communications
var (
	ErrEventNotFound        = NewResourceNotFoundError("event not found")
	ErrAnnouncementNotFound = NewResourceNotFoundError("announcement not found")
	ErrNotificationNotFound = NewResourceNotFoundError("notification not found")
)

// ErrNotAssigned is returned when a teacher acts on a subject they do not teach.
var ErrNotAssigned = NewForbiddenError("teacher is not assigned to this subject")

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewAlreadyExistsError creates a new custom error for unique violations
func NewAlreadyExistsError(message string) error {
	return &CustomError{
		Err:     ErrResourceAlreadyExists,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a field-level message
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
