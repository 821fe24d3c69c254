// Package server initializes and runs the todolist server. It opens the
// database, applies migrations, selects the session store, runs the session
// janitor and serves the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/todolist/internal/cryptox"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/httpapi"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/todolist/internal/server/services"
	"github.com/redis/go-redis/v9"
)

// logOutput receives the application log.
var logOutput io.Writer = os.Stdout

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	redis          *redis.Client
	userService    *services.UserService
	sessionService *services.SessionService
	listService    *services.ListService
	taskService    *services.TaskService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(logOutput, c.LogLevel, c.LogFormat)

	if c.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "secret key is the built-in default; session cookies can be forged, set SECRET_KEY")
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	salt, err := cryptox.DecodeSalt(c.PasswordSalt)
	if err != nil {
		return nil, err
	}

	params := cryptox.DefaultArgon2Params()
	params.Memory = c.Argon2Memory
	params.Iterations = c.Argon2Iterations
	params.Parallelism = c.Argon2Parallelism
	if err := params.Validate(); err != nil {
		return nil, err
	}
	codec := cryptox.NewPasswordCodec(params, salt)

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, c.DatabaseMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	sessionRepo, err := app.sessionRepository(ctx, rm)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.sessionService = services.NewSessionService(sessionRepo, c.SessionTTL, logger)
	app.userService = services.NewUserService(db, rm, codec, app.sessionService, logger)
	app.listService = services.NewListService(db, rm, logger)
	app.taskService = services.NewTaskService(db, rm, logger)

	return app, nil
}

// sessionRepository builds the session store named by the configuration.
func (app *App) sessionRepository(ctx context.Context, rm repomanager.RepositoryManager) (sessions.Repository, error) {
	switch app.config.SessionStore {
	case config.SessionStoreDB:
		return rm.Sessions(app.db), nil
	case config.SessionStoreMemory:
		return sessions.NewMemoryRepository(), nil
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     app.config.RedisAddr,
			Password: app.config.RedisPassword,
			DB:       app.config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		return sessions.NewRedisRepository(client), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", app.config.SessionStore)
	}
}

// Close releases the database pool and the redis client.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger,
		app.userService, app.sessionService, app.listService, app.taskService, app.db,
		httpapi.Options{SecretKey: app.config.SecretKey, CookieSecure: app.config.CookieSecure})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runJanitor purges expired sessions every SessionPurgeInterval.
// A non-positive interval disables it.
func (app *App) runJanitor(ctx context.Context) {
	interval := app.config.SessionPurgeInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.sessionService.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				app.logger.Error(ctx, "session purge failed", "error", err)
			}
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver, "session_store", app.config.SessionStore)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.runJanitor(ctx)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
