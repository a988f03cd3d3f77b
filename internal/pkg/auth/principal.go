package auth

import "github.com/yigit/sims/internal/app/models"

// Principal is the caller of a request, as established by the access token.
type Principal struct {
	UserID   int64
	UserType models.UserType
	Email    string
}

func (p Principal) IsAdmin() bool   { return p.UserType == models.UserTypeAdmin }
func (p Principal) IsTeacher() bool { return p.UserType == models.UserTypeTeacher }
func (p Principal) IsStudent() bool { return p.UserType == models.UserTypeStudent }

// Recipient addresses notifications to the principal.
func (p Principal) Recipient() models.Recipient {
	return models.Recipient{Kind: p.UserType, ID: p.UserID}
}
