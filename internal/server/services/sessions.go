package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/metrics"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
)

// handleBytes is the entropy of a session handle; the handle is its hex form.
const handleBytes = 32

// SessionService binds opaque handles to users.
//
// A ttl of zero creates sessions without expiry: they end when the client
// drops its cookie or the session is destroyed.
type SessionService struct {
	repo   sessions.Repository
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time
}

func NewSessionService(repo sessions.Repository, ttl time.Duration, logger logging.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		ttl:    ttl,
		logger: logger.With("module", "sessions"),
		now:    time.Now,
	}
}

// TTL reports the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	handle, err := common.MakeRandHexString(handleBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session handle: %w", err)
	}

	now := s.now().UTC()
	session := &models.Session{Handle: handle, UserID: userID, CreatedAt: now}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		session.ExpiresAt = &exp
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, storageErr(err)
	}
	return session, nil
}

// Resolve returns the user bound to handle. Unknown, destroyed and expired
// handles all yield common.ErrSessionInvalid; an expired session is removed
// on the way out.
func (s *SessionService) Resolve(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		metrics.SessionResolves.WithLabelValues(metrics.ResultInvalid).Inc()
		return "", common.ErrSessionInvalid
	}

	session, err := s.repo.Find(ctx, handle)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.SessionResolves.WithLabelValues(metrics.ResultInvalid).Inc()
			return "", common.ErrSessionInvalid
		}
		metrics.SessionResolves.WithLabelValues(metrics.ResultError).Inc()
		return "", storageErr(err)
	}

	if session.Expired(s.now()) {
		if err := s.repo.Delete(ctx, handle); err != nil {
			s.logger.Warn(ctx, "failed to remove expired session", "error", err)
		}
		metrics.SessionResolves.WithLabelValues(metrics.ResultInvalid).Inc()
		return "", common.ErrSessionInvalid
	}

	metrics.SessionResolves.WithLabelValues(metrics.ResultOK).Inc()
	return session.UserID, nil
}

// Destroy ends one session. Unknown handles are ignored.
func (s *SessionService) Destroy(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	return storageErr(s.repo.Delete(ctx, handle))
}

// DestroyAll ends every session of userID.
func (s *SessionService) DestroyAll(ctx context.Context, userID string) error {
	return storageErr(s.repo.DeleteByUser(ctx, userID))
}

// PurgeExpired removes sessions past their expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageErr(err)
	}
	if n > 0 {
		metrics.SessionsPurged.Add(float64(n))
		s.logger.Info(ctx, "expired sessions purged", "count", n)
	}
	return n, nil
}
