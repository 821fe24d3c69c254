package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/metrics"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PasswordHasher is satisfied by *cryptox.PasswordCodec.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	DestroyAll(ctx context.Context, userID string) error
}

// UserService provides identity operations:
// - Register: create users with hashed passwords
// - Authenticate: verify credentials
// - ChangePassword / SoftDelete: account maintenance, revoking sessions
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	revoker     SessionRevoker
	logger      logging.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, revoker SessionRevoker, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		revoker:     revoker,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// Register creates a user. The username check and the insert share one
// transaction; the partial unique index catches a concurrent winner.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, common.Validation("username is required")
	}
	if password == "" {
		return nil, common.Validation("password is required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		exists, err := repo.ExistsActive(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrUsernameTaken
		}
		_, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			metrics.Registrations.WithLabelValues(metrics.ResultTaken).Inc()
			return nil, common.ErrUsernameTaken
		}
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		return nil, storageErr(err)
	}

	metrics.Registrations.WithLabelValues(metrics.ResultOK).Inc()
	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate returns the active user matching username and password.
// A stored hash that cannot be parsed yields common.ErrCorruptCredential and
// is logged as an integrity fault.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same cost as a real verification, so timing does not reveal
			// whether the username exists
			s.burnVerify(password)
			metrics.LoginAttempts.WithLabelValues(metrics.ResultUserNotFound).Inc()
			s.logger.Info(ctx, "login failed", "reason", "user not found")
			return nil, common.ErrUserNotFound
		}
		metrics.LoginAttempts.WithLabelValues(metrics.ResultError).Inc()
		return nil, storageErr(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultCorrupt).Inc()
		s.logger.Error(ctx, "stored credential is corrupt", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		s.logger.Info(ctx, "login failed", "reason", "invalid credentials", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	metrics.LoginAttempts.WithLabelValues(metrics.ResultOK).Inc()
	return user, nil
}

// Get returns an active user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, storageErr(err)
	}
	return user, nil
}

// SoftDelete marks the user deleted and ends all of its sessions. Deleting
// an already deleted or unknown user is a no-op; a deletion is never undone.
func (s *UserService) SoftDelete(ctx context.Context, userID string) error {
	err := s.repomanager.Users(s.db).SoftDelete(ctx, userID, s.now().UTC())
	switch {
	case errors.Is(err, common.ErrNoMatchingRow):
		s.logger.Debug(ctx, "soft delete matched no active user", "user_id", userID)
	case err != nil:
		return storageErr(err)
	default:
		s.logger.Info(ctx, "user soft-deleted", "user_id", userID)
	}

	if err := s.revoker.DestroyAll(ctx, userID); err != nil {
		return err
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one and
// revokes every session of the user.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return common.Validation("new password is required")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored credential is corrupt", "user_id", user.ID, "error", err)
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, common.ErrNoMatchingRow) {
			return common.ErrUserNotFound
		}
		return storageErr(err)
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return s.revoker.DestroyAll(ctx, userID)
}

func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(hex.EncodeToString(common.GenerateRandByteArray(16)))
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
