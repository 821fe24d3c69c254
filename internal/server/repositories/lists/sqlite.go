package lists

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
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

func (r *SQLiteRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query := `insert into lists (id, title, created_by, created_at) values (?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, list.ID, list.Title, list.CreatedBy, dbx.ToMillis(list.CreatedAt)); err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.List, error) {
	query := `select id, title, created_by, created_at from lists
		where created_by = ? and deleted_at is null
		order by created_at, rowid`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select lists: %w", err)
	}
	defer rows.Close()

	result := []models.List{}
	for rows.Next() {
		var l models.List
		var createdAt int64
		if err := rows.Scan(&l.ID, &l.Title, &l.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = dbx.FromMillis(createdAt)
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, listID, ownerID string, at time.Time) error {
	query := `update lists set deleted_at = ? where id = ? and created_by = ? and deleted_at is null`

	res, err := r.db.ExecContext(ctx, query, dbx.ToMillis(at), listID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	ok, err := dbx.AtMostOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNoMatchingRow
	}
	return nil
}
