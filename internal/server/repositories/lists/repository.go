// Package lists stores task lists. Every operation is scoped to the owning
// user: a list is only visible to, and removable by, its creator.
package lists

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, list *models.List) (*models.List, error)
	// ListByOwner returns the owner's non-deleted lists in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]models.List, error)
	// SoftDelete is a single UPDATE conditioned on ownership and on the list
	// not being deleted yet. Zero rows yields common.ErrNoMatchingRow.
	SoftDelete(ctx context.Context, listID, ownerID string, at time.Time) error
}
