// Package sessions stores the association between opaque session handles
// and users. Backends: the shared SQL database, process memory and Redis.
// Every backend is safe for concurrent use.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	// Find returns common.ErrorNotFound for unknown handles. Expired
	// sessions are returned as stored; callers check Expired.
	Find(ctx context.Context, handle string) (*models.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, handle string) error
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteExpired removes sessions that expired at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
