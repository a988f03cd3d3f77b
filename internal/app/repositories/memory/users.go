package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

func matchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// AdminRepository is the in-memory admin_users table
type AdminRepository struct{ s *Store }

func (r *AdminRepository) Create(_ context.Context, admin *models.AdminUser) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	for _, a := range r.s.admins {
		if strings.EqualFold(a.Email, admin.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	now := r.s.now()
	admin.ID = r.s.nextID("admins")
	admin.CreatedAt, admin.UpdatedAt = now, now
	r.s.admins[admin.ID] = *admin
	return nil
}

func (r *AdminRepository) GetByID(_ context.Context, id int64) (*models.AdminUser, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	return &a, nil
}

func (r *AdminRepository) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, a := range r.s.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

func (r *AdminRepository) List(_ context.Context) ([]*models.AdminUser, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := make([]*models.AdminUser, 0, len(r.s.admins))
	for _, id := range sortedIDs(r.s.admins) {
		a := r.s.admins[id]
		out = append(out, &a)
	}
	return out, nil
}

func (r *AdminRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	a, ok := r.s.admins[id]
	if !ok {
		return apperrors.ErrAdminNotFound
	}
	a.Password = passwordHash
	a.UpdatedAt = r.s.now()
	r.s.admins[id] = a
	return nil
}

// TeacherRepository is the in-memory teachers table
type TeacherRepository struct{ s *Store }

func (r *TeacherRepository) checkUnique(t *models.Teacher) error {
	for id, other := range r.s.teachers {
		if id == t.ID {
			continue
		}
		if strings.EqualFold(other.Email, t.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if other.EmployeeID == t.EmployeeID {
			return apperrors.ErrEmployeeIDAlreadyExists
		}
	}
	if t.DepartmentID != nil {
		if _, ok := r.s.departments[*t.DepartmentID]; !ok {
			return apperrors.ErrDepartmentNotFound
		}
	}
	return nil
}

func (r *TeacherRepository) Create(_ context.Context, teacher *models.Teacher) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	teacher.ID = 0
	if err := r.checkUnique(teacher); err != nil {
		return err
	}
	now := r.s.now()
	teacher.ID = r.s.nextID("teachers")
	teacher.CreatedAt, teacher.UpdatedAt = now, now
	r.s.teachers[teacher.ID] = *teacher
	return nil
}

func (r *TeacherRepository) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	t, ok := r.s.teachers[id]
	if !ok {
		return nil, apperrors.ErrTeacherNotFound
	}
	return &t, nil
}

func (r *TeacherRepository) GetByEmail(_ context.Context, email string) (*models.Teacher, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, t := range r.s.teachers {
		if strings.EqualFold(t.Email, email) {
			return &t, nil
		}
	}
	return nil, apperrors.ErrTeacherNotFound
}

func (r *TeacherRepository) List(_ context.Context, filter models.TeacherFilter) ([]*models.Teacher, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Teacher{}
	for _, id := range sortedIDs(r.s.teachers) {
		t := r.s.teachers[id]
		if filter.DepartmentID != 0 && (t.DepartmentID == nil || *t.DepartmentID != filter.DepartmentID) {
			continue
		}
		if filter.IsActive != nil && t.IsActive != *filter.IsActive {
			continue
		}
		if !matchesSearch(filter.Search, t.FullName, t.Email, t.EmployeeID) {
			continue
		}
		matched = append(matched, &t)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].FullName < matched[j].FullName })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *TeacherRepository) Update(_ context.Context, teacher *models.Teacher) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.teachers[teacher.ID]
	if !ok {
		return apperrors.ErrTeacherNotFound
	}
	if err := r.checkUnique(teacher); err != nil {
		return err
	}
	teacher.Password = existing.Password
	teacher.ProfilePhoto = existing.ProfilePhoto
	teacher.CreatedAt = existing.CreatedAt
	teacher.UpdatedAt = r.s.now()
	r.s.teachers[teacher.ID] = *teacher
	return nil
}

func (r *TeacherRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	t, ok := r.s.teachers[id]
	if !ok {
		return apperrors.ErrTeacherNotFound
	}
	t.Password = passwordHash
	t.UpdatedAt = r.s.now()
	r.s.teachers[id] = t
	return nil
}

func (r *TeacherRepository) UpdateProfilePhoto(_ context.Context, id int64, url string) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	t, ok := r.s.teachers[id]
	if !ok {
		return apperrors.ErrTeacherNotFound
	}
	t.ProfilePhoto = &url
	t.UpdatedAt = r.s.now()
	r.s.teachers[id] = t
	return nil
}

func (r *TeacherRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.teachers[id]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	r.s.deleteTeacher(id)
	return nil
}

// StudentRepository is the in-memory students table
type StudentRepository struct{ s *Store }

func (r *StudentRepository) checkUnique(st *models.Student) error {
	for id, other := range r.s.students {
		if id == st.ID {
			continue
		}
		if strings.EqualFold(other.Email, st.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if other.RollNumber == st.RollNumber {
			return apperrors.ErrRollNumberAlreadyExists
		}
	}
	if st.SemesterID != nil {
		if _, ok := r.s.semesters[*st.SemesterID]; !ok {
			return apperrors.ErrSemesterNotFound
		}
	}
	return nil
}

func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	student.ID = 0
	if err := r.checkUnique(student); err != nil {
		return err
	}
	now := r.s.now()
	student.ID = r.s.nextID("students")
	student.CreatedAt, student.UpdatedAt = now, now
	r.s.students[student.ID] = *student
	return nil
}

func (r *StudentRepository) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	st, ok := r.s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &st, nil
}

func (r *StudentRepository) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, st := range r.s.students {
		if strings.EqualFold(st.Email, email) {
			return &st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *StudentRepository) GetByRollNumber(_ context.Context, rollNumber string) (*models.Student, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, st := range r.s.students {
		if st.RollNumber == rollNumber {
			return &st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *StudentRepository) List(_ context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Student{}
	for _, id := range sortedIDs(r.s.students) {
		st := r.s.students[id]
		if filter.SemesterID != 0 && (st.SemesterID == nil || *st.SemesterID != filter.SemesterID) {
			continue
		}
		if filter.EnrollmentYear != 0 && st.EnrollmentYear != filter.EnrollmentYear {
			continue
		}
		if filter.IsActive != nil && st.IsActive != *filter.IsActive {
			continue
		}
		if !matchesSearch(filter.Search, st.FullName, st.Email, st.RollNumber) {
			continue
		}
		matched = append(matched, &st)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].RollNumber < matched[j].RollNumber })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *StudentRepository) Update(_ context.Context, student *models.Student) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if err := r.checkUnique(student); err != nil {
		return err
	}
	student.Password = existing.Password
	student.ProfilePhoto = existing.ProfilePhoto
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = r.s.now()
	r.s.students[student.ID] = *student
	return nil
}

func (r *StudentRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	st, ok := r.s.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	st.Password = passwordHash
	st.UpdatedAt = r.s.now()
	r.s.students[id] = st
	return nil
}

func (r *StudentRepository) UpdateProfilePhoto(_ context.Context, id int64, url string) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	st, ok := r.s.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	st.ProfilePhoto = &url
	st.UpdatedAt = r.s.now()
	r.s.students[id] = st
	return nil
}

func (r *StudentRepository) Delete(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	r.s.deleteStudent(id)
	return nil
}

// PasswordResetTokenRepository is the in-memory password_reset_tokens table
type PasswordResetTokenRepository struct{ s *Store }

func (r *PasswordResetTokenRepository) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	for _, t := range r.s.resetTokens {
		if t.Token == token.Token {
			return apperrors.ErrPasswordResetTokenExists
		}
	}
	token.ID = r.s.nextID("password_reset_tokens")
	token.CreatedAt = r.s.now()
	r.s.resetTokens[token.ID] = *token
	return nil
}

func (r *PasswordResetTokenRepository) GetByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, t := range r.s.resetTokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidPasswordResetToken
}

func (r *PasswordResetTokenRepository) MarkUsed(_ context.Context, id int64) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	t, ok := r.s.resetTokens[id]
	if !ok {
		return apperrors.ErrInvalidPasswordResetToken
	}
	if t.IsUsed {
		return apperrors.ErrPasswordResetTokenUsed
	}
	t.IsUsed = true
	r.s.resetTokens[id] = t
	return nil
}
