package models

import "time"

// PasswordResetToken is scoped by (email, user type) because the three
// account tables may share an address.
type PasswordResetToken struct {
	ID        int64
	Email     string
	UserType  UserType
	Token     string
	ExpiresAt time.Time
	IsUsed    bool
	CreatedAt time.Time
}

// Usable reports whether the token can still reset a password at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.IsUsed && now.Before(t.ExpiresAt)
}
