// Package httpapi exposes the services over JSON/HTTP using gin. Handlers
// only decode requests, call a service and map its errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	SoftDelete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type SessionService interface {
	Create(ctx context.Context, userID string) (*models.Session, error)
	Resolve(ctx context.Context, handle string) (string, error)
	Destroy(ctx context.Context, handle string) error
}

type ListService interface {
	CreateList(ctx context.Context, ownerID, title string) (*models.List, error)
	ListLists(ctx context.Context, ownerID string) ([]models.List, error)
	DeleteList(ctx context.Context, listID, ownerID string) error
}

type TaskService interface {
	CreateTask(ctx context.Context, listID, title string, dueDate time.Time, creatorID string) (*models.Task, error)
	ListTasks(ctx context.Context, listID string) ([]models.Task, error)
	CompleteTask(ctx context.Context, taskID, completerID string) error
	UncompleteTask(ctx context.Context, taskID string) error
}

// Pinger reports storage liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configure the session cookie.
type Options struct {
	SecretKey    string
	CookieSecure bool
}

type HTTPServer struct {
	address  string
	users    UserService
	sessions SessionService
	lists    ListService
	tasks    TaskService
	db       Pinger
	logger   logging.Logger
	secret   []byte
	secure   bool
	router   *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ss SessionService, ls ListService, ts TaskService, db Pinger, opts Options) *HTTPServer {
	s := &HTTPServer{
		address:  a,
		users:    us,
		sessions: ss,
		lists:    ls,
		tasks:    ts,
		db:       db,
		logger:   l.With("module", "http_server"),
		secret:   []byte(opts.SecretKey),
		secure:   opts.CookieSecure,
	}
	s.router = s.routes()
	return s
}

// Handler returns the configured router.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestMetrics())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/users/register", s.register)
	api.POST("/users/login", s.login)
	api.POST("/users/logout", s.logout)

	authed := api.Group("", s.requireSession())
	authed.GET("/users/me", s.me)
	authed.DELETE("/users/me", s.deleteMe)
	authed.PUT("/users/me/password", s.changePassword)

	authed.GET("/lists", s.listLists)
	authed.POST("/lists", s.createList)
	authed.DELETE("/lists/:id", s.deleteList)
	authed.GET("/lists/:id/tasks", s.listTasks)
	authed.POST("/lists/:id/tasks", s.createTask)

	authed.POST("/tasks/:id/complete", s.completeTask)
	authed.POST("/tasks/:id/uncomplete", s.uncompleteTask)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
