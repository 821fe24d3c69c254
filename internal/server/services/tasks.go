package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/metrics"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TaskService implements task operations. Reads and completion changes
// are scoped by list or task only: any authenticated user may complete a
// task of a list it can address.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, logger: logger.With("module", "tasks"), now: time.Now}
}

// CreateTask adds an uncompleted task to a live list. dueDate is stored as
// midnight UTC of its calendar date.
func (s *TaskService) CreateTask(ctx context.Context, listID, title string, dueDate time.Time, creatorID string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.Validation("title is required")
	}
	if dueDate.IsZero() {
		return nil, common.Validation("due date is required")
	}

	task := &models.Task{
		ID:        uuid.NewString(),
		ListID:    listID,
		Title:     title,
		DueDate:   models.DueDay(dueDate),
		CreatedBy: creatorID,
		CreatedAt: s.now().UTC(),
	}

	err := common.ErrNoMatchingRow
	if validID(listID) {
		_, err = s.repomanager.Tasks(s.db).Create(ctx, task)
	}
	if err != nil {
		if errors.Is(err, common.ErrNoMatchingRow) {
			metrics.NoMatchingRow.WithLabelValues("create_task").Inc()
			s.logger.Warn(ctx, "task create matched no live list", "list_id", listID, "creator_id", creatorID)
		}
		return nil, storageErr(err)
	}
	return task, nil
}

// ListTasks returns every task of the list, completed or not.
func (s *TaskService) ListTasks(ctx context.Context, listID string) ([]models.Task, error) {
	if !validID(listID) {
		return []models.Task{}, nil
	}
	tasks, err := s.repomanager.Tasks(s.db).ListByList(ctx, listID)
	if err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

// CompleteTask records completerID as the completer. Completing an already
// completed task keeps the first completion and is not an error.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, completerID string) error {
	err := common.ErrNoMatchingRow
	if validID(taskID) {
		err = s.repomanager.Tasks(s.db).Complete(ctx, taskID, completerID, s.now().UTC())
	}
	return s.conditioned(ctx, "complete_task", taskID, err)
}

// UncompleteTask clears both completion fields.
func (s *TaskService) UncompleteTask(ctx context.Context, taskID string) error {
	err := common.ErrNoMatchingRow
	if validID(taskID) {
		err = s.repomanager.Tasks(s.db).Uncomplete(ctx, taskID)
	}
	return s.conditioned(ctx, "uncomplete_task", taskID, err)
}

func (s *TaskService) conditioned(ctx context.Context, op, taskID string, err error) error {
	if errors.Is(err, common.ErrNoMatchingRow) {
		metrics.NoMatchingRow.WithLabelValues(op).Inc()
		s.logger.Warn(ctx, "task update matched no row", "operation", op, "task_id", taskID)
	}
	return storageErr(err)
}
