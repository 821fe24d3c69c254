package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/metrics"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	handleKey = "sessionHandle"
	userKey   = "user"
)

// requireSession resolves the session cookie to an active user and stores
// it in the gin context. Requests without a live session are rejected with
// 401; a session whose user was deleted is destroyed.
func (s *HTTPServer) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		handle, err := s.handleFromCookie(c)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		userID, err := s.sessions.Resolve(ctx, handle)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		// a login racing a deletion can leave a session for a deleted user
		user, err := s.users.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrUserNotFound) {
				if err := s.sessions.Destroy(ctx, handle); err != nil {
					s.logger.Warn(ctx, "failed to destroy orphaned session", "user_id", userID, "error", err)
				}
				err = common.ErrSessionInvalid
			}
			s.abortWithError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userKey, user)
		c.Set(handleKey, handle)
		c.Next()
	}
}

func (s *HTTPServer) handleFromCookie(c *gin.Context) (string, error) {
	token, err := c.Cookie(common.SessionCookieName)
	if err != nil || token == "" {
		return "", common.ErrSessionInvalid
	}
	return auth.GetHandleFromToken(token, s.secret)
}

func (s *HTTPServer) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func currentUser(c *gin.Context) *models.User {
	u, _ := c.Get(userKey)
	user, _ := u.(*models.User)
	return user
}

func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
