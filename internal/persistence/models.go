package persistence

import "time"

// User is a mocked login account.
type User struct {
	ID                string
	Name              string
	Email             string
	PreferredLanguage string
	CreatedAt         time.Time
}

// Session represents a login session persisted for a user. Token is the raw
// bearer value; stores keep only its digest.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
