package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// DepartmentRepository is the in-memory departments table
type DepartmentRepository struct{ s *Store }

func (r *DepartmentRepository) codeTaken(code string, exceptID int64) bool {
	for id, d := range r.s.departments {
		if d.Code == code && id != exceptID {
			return true
		}
	}
	return false
}

func (r *DepartmentRepository) Create(_ context.Context, department *models.Department) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if r.codeTaken(department.Code, 0) {
		return apperrors.ErrDepartmentAlreadyExists
	}
	now := r.s.now()
	department.ID = r.s.nextID("departments")
	department.CreatedAt, department.UpdatedAt = now, now
	r.s.departments[department.ID] = *department
	return nil
}

func (r *DepartmentRepository) GetByID(_ context.Context, id int64) (*models.Department, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	d, ok := r.s.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return &d, nil
}

func (r *DepartmentRepository) GetAll(_ context.Context) ([]*models.Department, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := make([]*models.Department, 0, len(r.s.departments))
	for _, id := range sortedIDs(r.s.departments) {
		d := r.s.departments[id]
		out = append(out, &d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DepartmentRepository) Update(_ context.Context, department *models.Department) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.departments[department.ID]
	if !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if r.codeTaken(department.Code, department.ID) {
		return apperrors.ErrDepartmentAlreadyExists
	}
	department.CreatedAt = existing.CreatedAt
	department.UpdatedAt = r.s.now()
	r.s.departments[department.ID] = *department
	return nil
}

func (r *DepartmentRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.departments[id]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	r.s.deleteDepartment(id)
	return nil
}

// CourseRepository is the in-memory courses table
type CourseRepository struct{ s *Store }

func (r *CourseRepository) withDepartment(c models.Course) *models.Course {
	if d, ok := r.s.departments[c.DepartmentID]; ok {
		c.Department = &d
	}
	return &c
}

func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.departments[course.DepartmentID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	now := r.s.now()
	course.ID = r.s.nextID("courses")
	course.CreatedAt, course.UpdatedAt = now, now
	stored := *course
	stored.Department = nil
	r.s.courses[course.ID] = stored
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return r.withDepartment(c), nil
}

func (r *CourseRepository) List(_ context.Context, departmentID int64) ([]*models.Course, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := []*models.Course{}
	for _, id := range sortedIDs(r.s.courses) {
		c := r.s.courses[id]
		if departmentID != 0 && c.DepartmentID != departmentID {
			continue
		}
		out = append(out, r.withDepartment(c))
	}
	return out, nil
}

func (r *CourseRepository) Update(_ context.Context, course *models.Course) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if _, ok := r.s.departments[course.DepartmentID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = r.s.now()
	stored := *course
	stored.Department = nil
	r.s.courses[course.ID] = stored
	return nil
}

func (r *CourseRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	r.s.deleteCourse(id)
	return nil
}

// SemesterRepository is the in-memory semesters table
type SemesterRepository struct{ s *Store }

func (r *SemesterRepository) withCourse(sem models.Semester) *models.Semester {
	if c, ok := r.s.courses[sem.CourseID]; ok {
		sem.Course = &c
	}
	return &sem
}

func (r *SemesterRepository) duplicate(sem *models.Semester) bool {
	for id, other := range r.s.semesters {
		if id != sem.ID && other.CourseID == sem.CourseID &&
			other.SemesterNumber == sem.SemesterNumber && other.AcademicYear == sem.AcademicYear {
			return true
		}
	}
	return false
}

func (r *SemesterRepository) Create(_ context.Context, semester *models.Semester) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.courses[semester.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if r.duplicate(semester) {
		return apperrors.ErrSemesterAlreadyExists
	}
	now := r.s.now()
	semester.ID = r.s.nextID("semesters")
	semester.CreatedAt, semester.UpdatedAt = now, now
	stored := *semester
	stored.Course = nil
	r.s.semesters[semester.ID] = stored
	return nil
}

func (r *SemesterRepository) GetByID(_ context.Context, id int64) (*models.Semester, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	sem, ok := r.s.semesters[id]
	if !ok {
		return nil, apperrors.ErrSemesterNotFound
	}
	return r.withCourse(sem), nil
}

func (r *SemesterRepository) List(_ context.Context, courseID int64) ([]*models.Semester, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := []*models.Semester{}
	for _, id := range sortedIDs(r.s.semesters) {
		sem := r.s.semesters[id]
		if courseID != 0 && sem.CourseID != courseID {
			continue
		}
		out = append(out, r.withCourse(sem))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AcademicYear != out[j].AcademicYear {
			return out[i].AcademicYear > out[j].AcademicYear
		}
		return out[i].SemesterNumber < out[j].SemesterNumber
	})
	return out, nil
}

func (r *SemesterRepository) Update(_ context.Context, semester *models.Semester) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.semesters[semester.ID]
	if !ok {
		return apperrors.ErrSemesterNotFound
	}
	if _, ok := r.s.courses[semester.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if r.duplicate(semester) {
		return apperrors.ErrSemesterAlreadyExists
	}
	semester.CreatedAt = existing.CreatedAt
	semester.UpdatedAt = r.s.now()
	stored := *semester
	stored.Course = nil
	r.s.semesters[semester.ID] = stored
	return nil
}

func (r *SemesterRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.semesters[id]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	r.s.deleteSemester(id)
	return nil
}

// SubjectRepository is the in-memory subjects table
type SubjectRepository struct{ s *Store }

func (r *SubjectRepository) codeTaken(code string, exceptID int64) bool {
	for id, sub := range r.s.subjects {
		if sub.Code == code && id != exceptID {
			return true
		}
	}
	return false
}

func (r *SubjectRepository) Create(_ context.Context, subject *models.Subject) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.semesters[subject.SemesterID]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	if r.codeTaken(subject.Code, 0) {
		return apperrors.ErrSubjectAlreadyExists
	}
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	now := r.s.now()
	subject.ID = r.s.nextID("subjects")
	subject.CreatedAt, subject.UpdatedAt = now, now
	r.s.subjects[subject.ID] = *subject
	return nil
}

func (r *SubjectRepository) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	sub, ok := r.s.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return &sub, nil
}

func (r *SubjectRepository) List(_ context.Context, semesterID int64) ([]*models.Subject, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := []*models.Subject{}
	for _, id := range sortedIDs(r.s.subjects) {
		sub := r.s.subjects[id]
		if semesterID != 0 && sub.SemesterID != semesterID {
			continue
		}
		out = append(out, &sub)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *SubjectRepository) ListByTeacher(_ context.Context, teacherID int64) ([]*models.Subject, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	assigned := make(map[int64]bool)
	for _, a := range r.s.assignments {
		if a.TeacherID == teacherID {
			assigned[a.SubjectID] = true
		}
	}
	out := []*models.Subject{}
	for _, id := range sortedIDs(r.s.subjects) {
		if assigned[id] {
			sub := r.s.subjects[id]
			out = append(out, &sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *SubjectRepository) Update(_ context.Context, subject *models.Subject) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.subjects[subject.ID]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	if _, ok := r.s.semesters[subject.SemesterID]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	if r.codeTaken(subject.Code, subject.ID) {
		return apperrors.ErrSubjectAlreadyExists
	}
	if subject.Credits == 0 {
		subject.Credits = models.DefaultSubjectCredits
	}
	subject.CreatedAt = existing.CreatedAt
	subject.UpdatedAt = r.s.now()
	r.s.subjects[subject.ID] = *subject
	return nil
}

func (r *SubjectRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	r.s.deleteSubject(id)
	return nil
}

// AssignmentRepository is the in-memory teacher_subject_assignments table
type AssignmentRepository struct{ s *Store }

func (r *AssignmentRepository) Create(_ context.Context, assignment *models.TeacherSubjectAssignment) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.teachers[assignment.TeacherID]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	if _, ok := r.s.subjects[assignment.SubjectID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	for _, a := range r.s.assignments {
		if a.TeacherID == assignment.TeacherID && a.SubjectID == assignment.SubjectID {
			return apperrors.ErrAssignmentExists
		}
	}
	now := r.s.now()
	if assignment.AssignedDate.IsZero() {
		assignment.AssignedDate = now.Truncate(24 * time.Hour)
	}
	assignment.ID = r.s.nextID("assignments")
	assignment.CreatedAt, assignment.UpdatedAt = now, now
	r.s.assignments[assignment.ID] = *assignment
	return nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, id int64) (*models.TeacherSubjectAssignment, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *AssignmentRepository) Exists(_ context.Context, teacherID, subjectID int64) (bool, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, a := range r.s.assignments {
		if a.TeacherID == teacherID && a.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (r *AssignmentRepository) List(_ context.Context, filter models.AssignmentFilter) ([]*models.TeacherSubjectAssignment, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := []*models.TeacherSubjectAssignment{}
	for _, id := range sortedIDs(r.s.assignments) {
		a := r.s.assignments[id]
		if filter.TeacherID != 0 && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.SubjectID != 0 && a.SubjectID != filter.SubjectID {
			continue
		}
		out = append(out, &a)
	}
	return out, nil
}

func (r *AssignmentRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.assignments[id]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	delete(r.s.assignments, id)
	return nil
}
