package models

import "time"

// Task belongs to a List. CompletedAt and CompletedBy are either both set or
// both nil. CompletedByName is filled on reads that join the completer.
type Task struct {
	ID              string     `json:"id"`
	ListID          string     `json:"list_id"`
	Title           string     `json:"title"`
	DueDate         time.Time  `json:"due_date"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletedBy     *string    `json:"completed_by,omitempty"`
	CompletedByName *string    `json:"completed_by_name,omitempty"`
}

// Completed reports whether the task carries a completion.
func (t *Task) Completed() bool {
	return t.CompletedAt != nil
}

// DueDay truncates t to midnight UTC of its calendar date.
func DueDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
