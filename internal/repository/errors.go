// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a test
// that still has enrollments. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate.  Handlers translate these into
// HTTP 404 responses.
var (
	ErrTestNotFound       = errors.New("test not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrHoursNotFound      = errors.New("testing center hours not found")
	ErrSeatNotFound       = errors.New("seat not found")
)
