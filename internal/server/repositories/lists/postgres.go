package lists

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query :=
		`INSERT INTO lists (id, title, created_by, created_at)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, list.ID, list.Title, list.CreatedBy, list.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.List, error) {
	query :=
		`SELECT id, title, created_by, created_at FROM lists
		 WHERE created_by = $1 AND deleted_at IS NULL
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.List{}
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Title, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, listID, ownerID string, at time.Time) error {
	query :=
		`UPDATE lists SET deleted_at = $1
		 WHERE id = $2 AND created_by = $3 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, at, listID, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ok, err := dbx.AtMostOne(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrNoMatchingRow
	}
	return nil
}
