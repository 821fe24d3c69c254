package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/gin-gonic/gin"
)

const dueDateLayout = "2006-01-02"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type listRequest struct {
	Title string `json:"title"`
}

type taskRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

func (s *HTTPServer) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			s.logger.Error(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if !s.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if err := s.setSessionCookie(c, session); err != nil {
		s.abortWithError(c, err)
		return
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, user)
}

// logout destroys the presented session, if any, and always clears the cookie.
func (s *HTTPServer) logout(c *gin.Context) {
	if handle, err := s.handleFromCookie(c); err == nil {
		if err := s.sessions.Destroy(c.Request.Context(), handle); err != nil {
			s.abortWithError(c, err)
			return
		}
	}

	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *HTTPServer) deleteMe(c *gin.Context) {
	if err := s.users.SoftDelete(c.Request.Context(), currentUserID(c)); err != nil {
		s.abortWithError(c, err)
		return
	}

	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// changePassword revokes every session of the user, including this one.
func (s *HTTPServer) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !s.bind(c, &req) {
		return
	}

	err := s.users.ChangePassword(c.Request.Context(), currentUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) listLists(c *gin.Context) {
	lists, err := s.lists.ListLists(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *HTTPServer) createList(c *gin.Context) {
	var req listRequest
	if !s.bind(c, &req) {
		return
	}

	list, err := s.lists.CreateList(c.Request.Context(), currentUserID(c), req.Title)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (s *HTTPServer) deleteList(c *gin.Context) {
	if err := s.lists.DeleteList(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) listTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *HTTPServer) createTask(c *gin.Context) {
	var req taskRequest
	if !s.bind(c, &req) {
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), c.Param("id"), req.Title, due, currentUserID(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *HTTPServer) completeTask(c *gin.Context) {
	if err := s.tasks.CompleteTask(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) uncompleteTask(c *gin.Context) {
	if err := s.tasks.UncompleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.abortWithError(c, common.Validation("malformed request body"))
		return false
	}
	return true
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp. An empty
// value yields the zero time, which the task service rejects.
func parseDueDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(dueDateLayout, v); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, v); err == nil {
		return d, nil
	}
	return time.Time{}, common.Validation("due_date must be YYYY-MM-DD")
}

// setSessionCookie issues the signed handle. A session without expiry gets
// a cookie without Max-Age, which the browser drops when it closes.
func (s *HTTPServer) setSessionCookie(c *gin.Context, session *models.Session) error {
	token, err := auth.GenerateToken(session.Handle, s.secret, session.ExpiresAt)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if session.ExpiresAt != nil {
		cookie.Expires = *session.ExpiresAt
		cookie.MaxAge = int(time.Until(*session.ExpiresAt).Seconds())
		if cookie.MaxAge <= 0 {
			cookie.MaxAge = -1
		}
	}

	http.SetCookie(c.Writer, cookie)
	return nil
}

func (s *HTTPServer) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
