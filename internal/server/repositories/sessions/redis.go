package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	redis "github.com/redis/go-redis/v9"
)

// RedisRepository keeps each session under its own key with the session's
// TTL, so Redis expires them on its own. A per-user set indexes handles for
// DeleteByUser.
//
// key format: session:<handle>, user_sessions:<user id>
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

type redisSession struct {
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

func sessionKey(handle string) string { return "session:" + handle }

func userKey(userID string) string { return "user_sessions:" + userID }

func (r *RedisRepository) Create(ctx context.Context, s *models.Session) error {
	var ttl time.Duration
	if s.ExpiresAt != nil {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			// already expired; nothing worth storing
			return nil
		}
	}

	b, err := json.Marshal(redisSession{UserID: s.UserID, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(s.Handle), b, ttl)
		p.SAdd(ctx, userKey(s.UserID), s.Handle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, handle string) (*models.Session, error) {
	b, err := r.client.Get(ctx, sessionKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &models.Session{Handle: handle, UserID: rs.UserID, CreatedAt: rs.CreatedAt, ExpiresAt: rs.ExpiresAt}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, handle string) error {
	s, err := r.Find(ctx, handle)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(handle))
		p.SRem(ctx, userKey(s.UserID), handle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	handles, err := r.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	keys := make([]string, 0, len(handles)+1)
	for _, h := range handles {
		keys = append(keys, sessionKey(h))
	}
	keys = append(keys, userKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// DeleteExpired reports zero: Redis drops expired keys itself. Stale
// handles left in the per-user sets are removed by DeleteByUser.
func (r *RedisRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
