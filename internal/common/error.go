// Package common defines sentinel errors and small helpers shared by the
// storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrNoMatchingRow is returned when a conditioned write affected zero rows:
	// the row is missing, already in the target state, or owned by someone else.
	// The three cases are deliberately indistinguishable.
	ErrNoMatchingRow = errors.New("no matching row")

	// Identity errors.
	ErrUsernameTaken      = errors.New("username taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCorruptCredential signals a stored password hash that cannot be parsed.
	// It is an integrity fault, not an authentication failure.
	ErrCorruptCredential = errors.New("corrupt credential")

	// Session errors.
	ErrSessionInvalid = errors.New("session invalid")
	ErrInvalidToken   = errors.New("invalid token")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// ErrStorageFault is matched by every *StorageError.
	ErrStorageFault = errors.New("storage fault")
)

// StorageError wraps a backend failure. errors.Is(err, ErrStorageFault)
// reports true for it and errors.Unwrap yields the driver error.
type StorageError struct {
	Err error
}

// NewStorageError wraps err, returning nil for a nil err.
func NewStorageError(err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage fault: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFault
}

// Validation returns an error matching ErrValidation with a field-specific message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
