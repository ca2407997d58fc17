// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while SeatsTakenError signals that a booking attempt lost the
// race for one or more seats and carries the conflicting labels so the
// client can re-render its seat map.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrMovieNotFound indicates that a movie has not been cached yet.
var ErrMovieNotFound = errors.New("movie not found")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// SeatsTakenError reports which requested seats are already occupied.
// Seats is always non-empty and sorted.
type SeatsTakenError struct {
	Seats []string
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats %s are already taken", strings.Join(e.Seats, ", "))
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error number 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
