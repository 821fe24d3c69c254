package sessions

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/testdb"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("create find delete", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		exp := now.Add(time.Hour)

		require.NoError(t, r.Create(ctx, &models.Session{Handle: "h1", UserID: "u1", CreatedAt: now, ExpiresAt: &exp}))
		require.NoError(t, r.Create(ctx, &models.Session{Handle: "h2", UserID: "u1", CreatedAt: now}))

		s, err := r.Find(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, "u1", s.UserID)
		require.NotNil(t, s.ExpiresAt)
		assert.True(t, s.ExpiresAt.Equal(exp))

		s, err = r.Find(ctx, "h2")
		require.NoError(t, err)
		assert.Nil(t, s.ExpiresAt)

		require.NoError(t, r.Delete(ctx, "h1"))
		require.NoError(t, r.Delete(ctx, "h1"))
		_, err = r.Find(ctx, "h1")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delete by user", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		now := time.Now()

		require.NoError(t, r.Create(ctx, &models.Session{Handle: "a1", UserID: "alice", CreatedAt: now}))
		require.NoError(t, r.Create(ctx, &models.Session{Handle: "a2", UserID: "alice", CreatedAt: now}))
		require.NoError(t, r.Create(ctx, &models.Session{Handle: "b1", UserID: "bob", CreatedAt: now}))

		require.NoError(t, r.DeleteByUser(ctx, "alice"))

		for _, h := range []string{"a1", "a2"} {
			_, err := r.Find(ctx, h)
			assert.ErrorIs(t, err, common.ErrorNotFound, h)
		}
		_, err := r.Find(ctx, "b1")
		assert.NoError(t, err)
	})

	t.Run("concurrent create and find", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				h := fmt.Sprintf("h-%d", i)
				u := fmt.Sprintf("u-%d", i)
				assert.NoError(t, r.Create(ctx, &models.Session{Handle: h, UserID: u, CreatedAt: time.Now()}))
				s, err := r.Find(ctx, h)
				if assert.NoError(t, err) {
					assert.Equal(t, u, s.UserID)
				}
				assert.NoError(t, r.Delete(ctx, h))
			}(i)
		}
		wg.Wait()
	})
}

func TestSQLiteRepository_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewSQLiteRepository(testdb.OpenSQLite(t))
	})
}

func TestMemoryRepository_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewMemoryRepository()
	})
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRepository_Contract(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	runContract(t, func(t *testing.T) Repository {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
		t.Cleanup(func() { _ = client.Close() })
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return NewRedisRepository(client)
	})
}

func TestDeleteExpired(t *testing.T) {
	backends := map[string]func(t *testing.T) Repository{
		"sqlite": func(t *testing.T) Repository { return NewSQLiteRepository(testdb.OpenSQLite(t)) },
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			r := newRepo(t)
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Millisecond)
			past := now.Add(-time.Minute)
			future := now.Add(time.Minute)

			require.NoError(t, r.Create(ctx, &models.Session{Handle: "old", UserID: "u", CreatedAt: past, ExpiresAt: &past}))
			require.NoError(t, r.Create(ctx, &models.Session{Handle: "edge", UserID: "u", CreatedAt: past, ExpiresAt: &now}))
			require.NoError(t, r.Create(ctx, &models.Session{Handle: "live", UserID: "u", CreatedAt: now, ExpiresAt: &future}))
			require.NoError(t, r.Create(ctx, &models.Session{Handle: "browser", UserID: "u", CreatedAt: now}))

			n, err := r.DeleteExpired(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			for _, h := range []string{"live", "browser"} {
				_, err := r.Find(ctx, h)
				assert.NoError(t, err, h)
			}
		})
	}
}

func TestRedisRepository_SkipsAlreadyExpired(t *testing.T) {
	r := &RedisRepository{now: time.Now}
	past := time.Now().Add(-time.Second)
	// no client call happens for an already-expired session
	assert.NoError(t, r.Create(context.Background(), &models.Session{Handle: "h", UserID: "u", ExpiresAt: &past}))
}
