package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (id, list_id, title, due_date, created_by, created_at)
		 SELECT $1::uuid, l.id, $3, $4::date, $5::uuid, $6::timestamptz FROM lists l
		 WHERE l.id = $2 AND l.deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.ListID, task.Title, task.DueDate, task.CreatedBy, task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := oneRow(res); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *PostgresRepository) ListByList(ctx context.Context, listID string) ([]models.Task, error) {
	query :=
		`SELECT t.id, t.list_id, t.title, t.due_date, t.created_by, t.created_at,
		        t.completed_at, t.completed_by, u.username
		 FROM tasks t
		 LEFT JOIN users u ON u.id = t.completed_by
		 WHERE t.list_id = $1
		 ORDER BY t.created_at, t.id
		 `

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &t.DueDate, &t.CreatedBy, &t.CreatedAt,
			&t.CompletedAt, &t.CompletedBy, &t.CompletedByName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, taskID, completerID string, at time.Time) error {
	query :=
		`UPDATE tasks
		 SET completed_at = COALESCE(completed_at, $1),
		     completed_by = CASE WHEN completed_at IS NULL THEN $2 ELSE completed_by END
		 WHERE id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, at, completerID, taskID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) Uncomplete(ctx context.Context, taskID string) error {
	query :=
		`UPDATE tasks SET completed_at = NULL, completed_by = NULL
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func oneRow(res sql.Result) error {
	ok, err := dbx.AtMostOne(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrNoMatchingRow
	}
	return nil
}
