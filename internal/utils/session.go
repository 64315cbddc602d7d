package utils

import "time"

// SessionData is the minimal view of a login session that middleware needs.
// Defined here so middleware does not import the auth package directly.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}
