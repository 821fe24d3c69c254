package models

import "time"

// List is a named collection of tasks owned by the user who created it.
type List struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
