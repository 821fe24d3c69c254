package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCorrupt = common.ErrCorruptCredential

func newUserServiceWithFakes(t *testing.T, u *fakeUsersRepo) (*UserService, *fakeRevoker) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rev := &fakeRevoker{}
	return NewUserService(db, &fakeRepoManager{u: u}, &fakeHasher{}, rev, logging.Nop()), rev
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newUserServiceWithFakes(t, &fakeUsersRepo{})

	_, err := s.Register(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_CommitsTransaction(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{}}, &fakeHasher{}, &fakeRevoker{}, logging.Nop())

	u, err := s.Register(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, "hashed:pw1", u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_TakenRollsBack(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeUsersRepo
	}{
		{name: "existing active user", repo: &fakeUsersRepo{existsOut: true}},
		{name: "unique violation on insert", repo: &fakeUsersRepo{createErr: common.ErrUsernameTaken}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			s := NewUserService(db, &fakeRepoManager{u: tt.repo}, &fakeHasher{}, &fakeRevoker{}, logging.Nop())

			_, err := s.Register(context.Background(), "alice", "pw")
			assert.ErrorIs(t, err, common.ErrUsernameTaken)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_StorageFault(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{existsErr: errBoom{}}}, &fakeHasher{}, &fakeRevoker{}, logging.Nop())

	_, err := s.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrStorageFault)
	assert.ErrorIs(t, err, errBoom{})
}

func TestRegister_BeginFails(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{}}, &fakeHasher{}, &fakeRevoker{}, logging.Nop())

	_, err := s.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrStorageFault)
}

func TestRegister_HashError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{}}, &fakeHasher{hashErr: errBoom{}}, &fakeRevoker{}, logging.Nop())

	_, err := s.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, errBoom{})
}

func TestAuthenticate(t *testing.T) {
	stored := &models.User{ID: "u1", UserName: "alice", PasswordHash: "hashed:pw1"}

	tests := []struct {
		name     string
		repo     *fakeUsersRepo
		password string
		wantErr  error
	}{
		{name: "ok", repo: &fakeUsersRepo{getOut: stored}, password: "pw1"},
		{name: "wrong password", repo: &fakeUsersRepo{getOut: stored}, password: "nope", wantErr: common.ErrInvalidCredentials},
		{name: "unknown user", repo: &fakeUsersRepo{getErr: common.ErrorNotFound}, password: "pw1", wantErr: common.ErrUserNotFound},
		{name: "corrupt hash", repo: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: "corrupt"}}, password: "pw1", wantErr: common.ErrCorruptCredential},
		{name: "storage", repo: &fakeUsersRepo{getErr: errBoom{}}, password: "pw1", wantErr: common.ErrStorageFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newUserServiceWithFakes(t, tt.repo)

			u, err := s.Authenticate(context.Background(), "alice", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)
		})
	}
}

func TestAuthenticate_CorruptIsNotInvalidCredentials(t *testing.T) {
	s, _ := newUserServiceWithFakes(t, &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: "corrupt"}})

	_, err := s.Authenticate(context.Background(), "alice", "pw")
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestGet(t *testing.T) {
	s, _ := newUserServiceWithFakes(t, &fakeUsersRepo{getErr: common.ErrorNotFound})
	_, err := s.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestSoftDelete_RevokesSessions(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "deleted"},
		{name: "already deleted is a no-op", repoErr: common.ErrNoMatchingRow},
		{name: "storage", repoErr: errBoom{}, wantErr: common.ErrStorageFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rev := newUserServiceWithFakes(t, &fakeUsersRepo{softDeleteErr: tt.repoErr})

			err := s.SoftDelete(context.Background(), "u1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, rev.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"u1"}, rev.calls)
		})
	}
}

func TestChangePassword(t *testing.T) {
	stored := &models.User{ID: "u1", UserName: "alice", PasswordHash: "hashed:old"}

	t.Run("ok", func(t *testing.T) {
		repo := &fakeUsersRepo{getOut: stored}
		s, rev := newUserServiceWithFakes(t, repo)

		require.NoError(t, s.ChangePassword(context.Background(), "u1", "old", "new"))
		assert.Equal(t, "hashed:new", repo.updatedHash)
		assert.Equal(t, []string{"u1"}, rev.calls)
	})

	t.Run("wrong old password", func(t *testing.T) {
		repo := &fakeUsersRepo{getOut: stored}
		s, rev := newUserServiceWithFakes(t, repo)

		err := s.ChangePassword(context.Background(), "u1", "guess", "new")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		assert.Empty(t, repo.updatedHash)
		assert.Empty(t, rev.calls)
	})

	t.Run("empty new password", func(t *testing.T) {
		s, _ := newUserServiceWithFakes(t, &fakeUsersRepo{getOut: stored})
		assert.ErrorIs(t, s.ChangePassword(context.Background(), "u1", "old", ""), common.ErrValidation)
	})

	t.Run("user vanished", func(t *testing.T) {
		s, _ := newUserServiceWithFakes(t, &fakeUsersRepo{getOut: stored, updateErr: common.ErrNoMatchingRow})
		assert.ErrorIs(t, s.ChangePassword(context.Background(), "u1", "old", "new"), common.ErrUserNotFound)
	})
}
