package dbx

import (
	"database/sql"
	"time"
)

// SQLite has no native timestamp type; the SQLite repositories store
// instants as UTC Unix milliseconds in INTEGER columns.

// ToMillis normalizes t into millisecond precision for storage.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromMillis restores a stored instant as UTC.
func FromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// NullMillis converts an optional instant into a nullable INTEGER argument.
func NullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: ToMillis(*t), Valid: true}
}

// TimeFromNull converts a scanned nullable INTEGER back into an optional instant.
func TimeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := FromMillis(v.Int64)
	return &t
}
