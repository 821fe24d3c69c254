// Package tasks stores the tasks of a list. Task reads and completion
// changes are scoped by list or task identifier only.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	// Create inserts task only when its list exists and is not deleted;
	// otherwise it yields common.ErrNoMatchingRow.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	// ListByList returns every task of the list in creation order, with the
	// completer's username joined in.
	ListByList(ctx context.Context, listID string) ([]models.Task, error)
	// Complete stamps both completion fields unless the task is already
	// completed, in which case the first completion is kept.
	Complete(ctx context.Context, taskID, completerID string, at time.Time) error
	Uncomplete(ctx context.Context, taskID string) error
}
