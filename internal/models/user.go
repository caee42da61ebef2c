package models

import "time"

// User is the account record shared by every storage backend. IDs are opaque:
// decimal for the relational store, ObjectID hex for the document store.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	Verified         bool      `json:"verified"`
	VerificationCode *string   `json:"verificationCode"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PendingVerification reports whether the account still awaits its code.
func (u *User) PendingVerification() bool {
	return u != nil && !u.Verified && u.VerificationCode != nil
}

// MatchesCode reports whether code equals the outstanding verification code.
func (u *User) MatchesCode(code string) bool {
	return u.PendingVerification() && *u.VerificationCode == code
}
