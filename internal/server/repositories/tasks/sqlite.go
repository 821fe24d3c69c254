package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `insert into tasks (id, list_id, title, due_date, created_by, created_at)
		select ?, id, ?, ?, ?, ? from lists where id = ? and deleted_at is null`

	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, dbx.ToMillis(task.DueDate), task.CreatedBy, dbx.ToMillis(task.CreatedAt), task.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	if err := oneRow(res); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *SQLiteRepository) ListByList(ctx context.Context, listID string) ([]models.Task, error) {
	query := `select t.id, t.list_id, t.title, t.due_date, t.created_by, t.created_at,
			t.completed_at, t.completed_by, u.username
		from tasks t
		left join users u on u.id = t.completed_by
		where t.list_id = ?
		order by t.created_at, t.rowid`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := []models.Task{}
	for rows.Next() {
		var (
			t                   models.Task
			dueDate, createdAt  int64
			completedAt         sql.NullInt64
			completedBy, byName sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &dueDate, &t.CreatedBy, &createdAt,
			&completedAt, &completedBy, &byName); err != nil {
			return nil, err
		}
		t.DueDate = dbx.FromMillis(dueDate)
		t.CreatedAt = dbx.FromMillis(createdAt)
		t.CompletedAt = dbx.TimeFromNull(completedAt)
		t.CompletedBy = stringFromNull(completedBy)
		t.CompletedByName = stringFromNull(byName)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Complete(ctx context.Context, taskID, completerID string, at time.Time) error {
	query := `update tasks
		set completed_at = coalesce(completed_at, ?),
			completed_by = case when completed_at is null then ? else completed_by end
		where id = ?`

	res, err := r.db.ExecContext(ctx, query, dbx.ToMillis(at), completerID, taskID)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteRepository) Uncomplete(ctx context.Context, taskID string) error {
	query := `update tasks set completed_at = null, completed_by = null where id = ?`

	res, err := r.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("failed to uncomplete task: %w", err)
	}
	return oneRow(res)
}

func stringFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
