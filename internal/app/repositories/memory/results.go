package memory

import (
	"context"
	"sort"

	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// ResultRepository is the in-memory results table. Every write recomputes
// the derived fields.
type ResultRepository struct{ s *Store }

func (r *ResultRepository) Create(_ context.Context, result *models.Result) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.students[result.StudentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	if _, ok := r.s.subjects[result.SubjectID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	for _, other := range r.s.results {
		if other.StudentID == result.StudentID && other.SubjectID == result.SubjectID {
			return apperrors.ErrResultAlreadyExists
		}
	}
	result.Recompute()
	now := r.s.now()
	result.ID = r.s.nextID("results")
	result.CreatedAt, result.UpdatedAt = now, now
	r.s.results[result.ID] = *result
	return nil
}

func (r *ResultRepository) Update(_ context.Context, result *models.Result) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	existing, ok := r.s.results[result.ID]
	if !ok {
		return apperrors.ErrResultNotFound
	}
	result.StudentID = existing.StudentID
	result.SubjectID = existing.SubjectID
	result.Recompute()
	result.CreatedAt = existing.CreatedAt
	result.UpdatedAt = r.s.now()
	r.s.results[result.ID] = *result
	return nil
}

func (r *ResultRepository) GetByID(_ context.Context, id int64) (*models.Result, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	res, ok := r.s.results[id]
	if !ok {
		return nil, apperrors.ErrResultNotFound
	}
	return &res, nil
}

func (r *ResultRepository) GetByStudentSubject(_ context.Context, studentID, subjectID int64) (*models.Result, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, res := range r.s.results {
		if res.StudentID == studentID && res.SubjectID == subjectID {
			return &res, nil
		}
	}
	return nil, apperrors.ErrResultNotFound
}

func (r *ResultRepository) List(_ context.Context, filter models.ResultFilter) ([]*models.Result, int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var allowed map[int64]bool
	if filter.SubjectIDs != nil {
		allowed = make(map[int64]bool, len(filter.SubjectIDs))
		for _, id := range filter.SubjectIDs {
			allowed[id] = true
		}
	}

	matched := []*models.Result{}
	for _, id := range sortedIDs(r.s.results) {
		res := r.s.results[id]
		if filter.StudentID != 0 && res.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && res.SubjectID != filter.SubjectID {
			continue
		}
		if allowed != nil && !allowed[res.SubjectID] {
			continue
		}
		if filter.IsPublished != nil && res.IsPublished != *filter.IsPublished {
			continue
		}
		matched = append(matched, &res)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].SubjectID != matched[j].SubjectID {
			return matched[i].SubjectID < matched[j].SubjectID
		}
		return matched[i].StudentID < matched[j].StudentID
	})
	return paginate(matched, filter.Page), int64(len(matched)), nil
}
