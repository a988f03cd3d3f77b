package services

import (
	"context"

	"github.com/yigit/sims/internal/app/models"
)

// CredentialSource is one role's account table as seen by authentication.
// Each lookup returns the role's not-found error on a miss.
type CredentialSource interface {
	Role() models.UserType
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id int64) (models.Account, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
}

// NewCredentialSources builds the admin, teacher and student sources
func NewCredentialSources(repos *Repositories) map[models.UserType]CredentialSource {
	sources := []CredentialSource{
		adminCredentials{repos.Admins},
		teacherCredentials{repos.Teachers},
		studentCredentials{repos.Students},
	}
	m := make(map[models.UserType]CredentialSource, len(sources))
	for _, src := range sources {
		m[src.Role()] = src
	}
	return m
}

type adminCredentials struct{ repo AdminRepository }

func (c adminCredentials) Role() models.UserType { return models.UserTypeAdmin }

func (c adminCredentials) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	a, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c adminCredentials) FindByID(ctx context.Context, id int64) (models.Account, error) {
	a, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c adminCredentials) SetPassword(ctx context.Context, id int64, hash string) error {
	return c.repo.UpdatePassword(ctx, id, hash)
}

type teacherCredentials struct{ repo TeacherRepository }

func (c teacherCredentials) Role() models.UserType { return models.UserTypeTeacher }

func (c teacherCredentials) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	t, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c teacherCredentials) FindByID(ctx context.Context, id int64) (models.Account, error) {
	t, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c teacherCredentials) SetPassword(ctx context.Context, id int64, hash string) error {
	return c.repo.UpdatePassword(ctx, id, hash)
}

type studentCredentials struct{ repo StudentRepository }

func (c studentCredentials) Role() models.UserType { return models.UserTypeStudent }

func (c studentCredentials) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	s, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c studentCredentials) FindByID(ctx context.Context, id int64) (models.Account, error) {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c studentCredentials) SetPassword(ctx context.Context, id int64, hash string) error {
	return c.repo.UpdatePassword(ctx, id, hash)
}

// displayName is the greeting used in outgoing mail
func displayName(account models.Account) string {
	switch a := account.(type) {
	case *models.AdminUser:
		return a.FullName
	case *models.Teacher:
		return a.FullName
	case *models.Student:
		return a.FullName
	}
	return account.AccountEmail()
}
