package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// AttendanceRepository is the in-memory attendance table
type AttendanceRepository struct{ s *Store }

type attendanceKey struct {
	studentID, subjectID int64
	date                 string
	lectureTime          string
}

func keyOf(a *models.Attendance) attendanceKey {
	return attendanceKey{a.StudentID, a.SubjectID, a.Date.Format("2006-01-02"), a.LectureTime}
}

func (r *AttendanceRepository) checkInsert(a *models.Attendance, pending map[attendanceKey]bool) error {
	if _, ok := r.s.students[a.StudentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	if _, ok := r.s.subjects[a.SubjectID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	if _, ok := r.s.teachers[a.TeacherID]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	key := keyOf(a)
	if pending[key] {
		return apperrors.ErrAttendanceAlreadyMarked
	}
	for _, existing := range r.s.attendance {
		if keyOf(&existing) == key {
			return apperrors.ErrAttendanceAlreadyMarked
		}
	}
	pending[key] = true
	return nil
}

func (r *AttendanceRepository) insert(a *models.Attendance) {
	now := r.s.now()
	a.ID = r.s.nextID("attendance")
	if a.MarkedAt.IsZero() {
		a.MarkedAt = now
	}
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.attendance[a.ID] = *a
}

func (r *AttendanceRepository) Create(_ context.Context, record *models.Attendance) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if err := r.checkInsert(record, map[attendanceKey]bool{}); err != nil {
		return err
	}
	r.insert(record)
	return nil
}

func (r *AttendanceRepository) CreateBatch(_ context.Context, records []*models.Attendance) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	pending := make(map[attendanceKey]bool, len(records))
	for _, rec := range records {
		if err := r.checkInsert(rec, pending); err != nil {
			return err
		}
	}
	for _, rec := range records {
		r.insert(rec)
	}
	return nil
}

func (r *AttendanceRepository) GetByID(_ context.Context, id int64) (*models.Attendance, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	a, ok := r.s.attendance[id]
	if !ok {
		return nil, apperrors.ErrAttendanceNotFound
	}
	return &a, nil
}

func (r *AttendanceRepository) Update(_ context.Context, record *models.Attendance) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.attendance[record.ID]
	if !ok {
		return apperrors.ErrAttendanceNotFound
	}
	existing.Status = record.Status
	existing.IsEditable = record.IsEditable
	existing.UpdatedAt = r.s.now()
	r.s.attendance[record.ID] = existing
	*record = existing
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *AttendanceRepository) List(_ context.Context, filter models.AttendanceFilter) ([]*models.Attendance, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	matched := []*models.Attendance{}
	for _, id := range sortedIDs(r.s.attendance) {
		a := r.s.attendance[id]
		if filter.StudentID != 0 && a.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && a.SubjectID != filter.SubjectID {
			continue
		}
		if filter.TeacherID != 0 && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		day := dateOnly(a.Date)
		if filter.DateFrom != nil && day.Before(dateOnly(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && day.After(dateOnly(*filter.DateTo)) {
			continue
		}
		matched = append(matched, &a)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].LectureTime > matched[j].LectureTime
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (r *AttendanceRepository) Summarize(_ context.Context, studentID int64) ([]*models.AttendanceSubjectSummary, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	bySubject := make(map[int64]*models.AttendanceSubjectSummary)
	for _, a := range r.s.attendance {
		if a.StudentID != studentID {
			continue
		}
		sum, ok := bySubject[a.SubjectID]
		if !ok {
			sub := r.s.subjects[a.SubjectID]
			sum = &models.AttendanceSubjectSummary{SubjectID: a.SubjectID, SubjectCode: sub.Code, SubjectName: sub.Name}
			bySubject[a.SubjectID] = sum
		}
		sum.Total++
		if a.Status == models.AttendancePresent {
			sum.Present++
		}
	}

	out := make([]*models.AttendanceSubjectSummary, 0, len(bySubject))
	for _, sum := range bySubject {
		sum.ComputePercentage()
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}
