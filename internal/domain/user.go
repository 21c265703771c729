package domain

import "time"

type (
	Email  = string
	UserId = int64
)

// User is the persisted account record. PassHash and the reset token fields
// never leave the storage/service boundary; Scrub() strips them before the
// record is handed to a response.
type User struct {
	Id             UserId     `json:"id"`
	Name           string     `json:"name"`
	Email          Email      `json:"email"`
	PassHash       string     `json:"-"`
	ResetTokenHash *string    `json:"-"`
	ResetTokenExp  *time.Time `json:"-"`
}

// Scrub returns a copy with all credential material removed.
func (u User) Scrub() User {
	u.PassHash = ""
	u.ResetTokenHash = nil
	u.ResetTokenExp = nil
	return u
}

// SessionClaims is the identity carried inside a session token.
// It is never persisted.
type SessionClaims struct {
	Id    UserId
	Email Email
}
