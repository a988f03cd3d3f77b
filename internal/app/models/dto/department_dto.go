package dto

// DepartmentRequest creates or replaces a department
type DepartmentRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Code string `json:"code" binding:"required,code"`
}

// CourseRequest creates or replaces a course
type CourseRequest struct {
	DepartmentID  int64  `json:"department_id" binding:"required,min=1"`
	Name          string `json:"name" binding:"required,max=200"`
	DurationYears int    `json:"duration_years" binding:"required,min=1,max=10"`
}

// SemesterRequest creates or replaces a semester
type SemesterRequest struct {
	CourseID       int64  `json:"course_id" binding:"required,min=1"`
	SemesterNumber int    `json:"semester_number" binding:"required,min=1,max=20"`
	AcademicYear   string `json:"academic_year" binding:"required,academic_year"`
}

// SubjectRequest creates or replaces a subject. Credits default to 4.
type SubjectRequest struct {
	SemesterID int64  `json:"semester_id" binding:"required,min=1"`
	Name       string `json:"name" binding:"required,max=200"`
	Code       string `json:"code" binding:"required,code"`
	Credits    int    `json:"credits" binding:"omitempty,min=1,max=20"`
}

// AssignmentRequest assigns a teacher to a subject
type AssignmentRequest struct {
	TeacherID int64 `json:"teacher_id" binding:"required,min=1"`
	SubjectID int64 `json:"subject_id" binding:"required,min=1"`
}
