package users

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `insert into users (id, username, password_hash, created_at) values (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.UserName, user.PasswordHash, dbx.ToMillis(user.CreatedAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `select id, username, password_hash, created_at from users where username = ? and deleted_at is null`
	return r.getOne(ctx, query, username)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `select id, username, password_hash, created_at from users where id = ? and deleted_at is null`
	return r.getOne(ctx, query, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var createdAt int64
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.UserName, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	user.CreatedAt = dbx.FromMillis(createdAt)
	return user, nil
}

func (r *SQLiteRepository) ExistsActive(ctx context.Context, username string) (bool, error) {
	query := `select exists (select 1 from users where username = ? and deleted_at is null)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("query row scan failed: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `update users set deleted_at = ? where id = ? and deleted_at is null`

	res, err := r.db.ExecContext(ctx, query, dbx.ToMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return oneRow(res)
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	query := `update users set password_hash = ? where id = ? and deleted_at is null`

	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return oneRow(res)
}
