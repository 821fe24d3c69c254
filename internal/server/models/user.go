// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. A user with a non-nil DeletedAt is
// soft-deleted: it can no longer authenticate and its username may be
// registered again.
type User struct {
	ID           string     `json:"id"`
	UserName     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the user has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}
