package models

import "time"

// Session binds an opaque handle to a user. A nil ExpiresAt means the
// session lives until it is destroyed.
type Session struct {
	Handle    string
	UserID    string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
