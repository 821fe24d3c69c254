package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/lists"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	existsOut bool
	existsErr error
	createErr error

	getOut *models.User
	getErr error

	softDeleteErr error
	updateErr     error
	updatedHash   string
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}
func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return f.getOut, f.getErr
}
func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return f.getOut, f.getErr
}
func (f *fakeUsersRepo) ExistsActive(context.Context, string) (bool, error) {
	return f.existsOut, f.existsErr
}
func (f *fakeUsersRepo) SoftDelete(context.Context, string, time.Time) error { return f.softDeleteErr }
func (f *fakeUsersRepo) UpdatePasswordHash(_ context.Context, _ string, hash string) error {
	f.updatedHash = hash
	return f.updateErr
}

type fakeListsRepo struct {
	createErr  error
	listOut    []models.List
	listErr    error
	softDelErr error
}

func (f *fakeListsRepo) Create(_ context.Context, l *models.List) (*models.List, error) {
	return l, f.createErr
}
func (f *fakeListsRepo) ListByOwner(context.Context, string) ([]models.List, error) {
	return f.listOut, f.listErr
}
func (f *fakeListsRepo) SoftDelete(context.Context, string, string, time.Time) error {
	return f.softDelErr
}

type fakeTasksRepo struct {
	created       *models.Task
	createErr     error
	listErr       error
	completeErr   error
	uncompleteErr error
}

func (f *fakeTasksRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	f.created = t
	return t, f.createErr
}
func (f *fakeTasksRepo) ListByList(context.Context, string) ([]models.Task, error) {
	return nil, f.listErr
}
func (f *fakeTasksRepo) Complete(context.Context, string, string, time.Time) error {
	return f.completeErr
}
func (f *fakeTasksRepo) Uncomplete(context.Context, string) error { return f.uncompleteErr }

type fakeRepoManager struct {
	u *fakeUsersRepo
	l *fakeListsRepo
	t *fakeTasksRepo
	s sessions.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Lists(dbx.DBTX) lists.Repository             { return m.l }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository             { return m.t }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository       { return m.s }

// fakeHasher stores "hashed:" + password; "corrupt" hashes fail to decode.
type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h *fakeHasher) Verify(p, encoded string) (bool, error) {
	if encoded == "corrupt" {
		return false, errCorrupt
	}
	return encoded == "hashed:"+p, nil
}

type fakeRevoker struct {
	calls []string
	err   error
}

func (r *fakeRevoker) DestroyAll(_ context.Context, userID string) error {
	r.calls = append(r.calls, userID)
	return r.err
}

type fakeSessionsRepo struct {
	sessions.Repository
	findOut    *models.Session
	findErr    error
	deleted    []string
	deleteErr  error
	expiredN   int64
	expiredErr error
}

func (f *fakeSessionsRepo) Find(context.Context, string) (*models.Session, error) {
	return f.findOut, f.findErr
}
func (f *fakeSessionsRepo) Delete(_ context.Context, h string) error {
	f.deleted = append(f.deleted, h)
	return f.deleteErr
}
func (f *fakeSessionsRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.expiredN, f.expiredErr
}
