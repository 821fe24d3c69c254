// Package users stores registered accounts. Lookups only ever see users
// that are not soft-deleted.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	// Create inserts user as-is. A clash with an active username yields
	// common.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsActive(ctx context.Context, username string) (bool, error)
	// SoftDelete stamps deleted_at when it is still NULL. Zero rows yields
	// common.ErrNoMatchingRow.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
}
