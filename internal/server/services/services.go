// Package services contains server-side business logic: identity,
// sessions and the ownership-scoped list and task operations. Services
// validate input, delegate to repositories and translate storage failures
// into *common.StorageError.
package services

import (
	"errors"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/google/uuid"
)

// storageErr passes domain outcomes through and wraps everything else as a
// storage fault.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{
		common.ErrNoMatchingRow,
		common.ErrUsernameTaken,
		common.ErrorNotFound,
	} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return common.NewStorageError(err)
}

// validID reports whether id is a canonical UUID. Row ids are UUIDs on every
// backend, so any other string addresses no row.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
