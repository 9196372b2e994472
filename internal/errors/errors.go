// Package errors holds the sentinel errors shared across the application's
// remote-service clients and the handlers that map them onto user messaging.
package errors

import "errors"

var (
	// ErrNotFound reports that a remote record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyDeleted reports that a delete targeted a record that was
	// already gone, so the operation had no effect.
	ErrAlreadyDeleted = errors.New("already deleted")
)
