package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/models"
)

// SQLiteRepository keeps sessions in the sessions table using a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Session) error {
	query := `insert into sessions (handle, user_id, created_at, expires_at) values (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, s.Handle, s.UserID, dbx.ToMillis(s.CreatedAt), dbx.NullMillis(s.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, handle string) (*models.Session, error) {
	query := `select handle, user_id, created_at, expires_at from sessions where handle = ?`

	s := &models.Session{}
	var createdAt int64
	var expiresAt sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, handle).Scan(&s.Handle, &s.UserID, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	s.CreatedAt = dbx.FromMillis(createdAt)
	s.ExpiresAt = dbx.TimeFromNull(expiresAt)
	return s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, handle string) error {
	if _, err := r.db.ExecContext(ctx, `delete from sessions where handle = ?`, handle); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `delete from sessions where user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`delete from sessions where expires_at is not null and expires_at <= ?`, dbx.ToMillis(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
