// Package repository implements the data-access layer.  Each entity
// gets its own repo bound to a shared *sql.DB pool; every operation
// takes a context and reports failures through the sentinel errors
// below, so callers can tell "not found" apart from a storage error.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.  For
// ownership-filtered lookups it also covers rows that exist but belong
// to someone else.  Handlers should translate this into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when user creation hits the unique
// username constraint.  Handlers should translate this into a 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrNoActiveDriver is returned by the driver match when no driver
// is currently in active mode.
var ErrNoActiveDriver = errors.New("no active driver available")

// ErrForbidden is returned when the caller attempts an operation on
// a ride they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a ride status change is not
// allowed from the ride's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// isDuplicate reports whether err is a unique-constraint violation.
// MySQL surfaces these as error 1062; SQLite (used by the tests)
// reports "UNIQUE constraint failed".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") || strings.Contains(msg, "UNIQUE constraint")
}
