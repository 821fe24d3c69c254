package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todolist/internal/common"
)

// statusFor maps a service error to a status code and a client-safe message.
// Unknown user and wrong password share one message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusConflict, "username taken"
	case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "login failed"
	case errors.Is(err, common.ErrSessionInvalid), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "session invalid"
	case errors.Is(err, common.ErrNoMatchingRow), errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
