// Package repository defines the data access layer of the catalog.  The
// sentinel values below let handlers and the catalog workspace tell
// different failure scenarios apart without inspecting driver errors.
package repository

import "errors"

// ErrMovieNotFound is returned by lookups and updates that reference an
// id the store does not hold.  Handlers translate it into HTTP 404; the
// batch dispatcher records it as a per-item failure.
var ErrMovieNotFound = errors.New("movie not found")

// ErrForbidden is returned when the caller attempts an operation its role
// does not allow.  Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals that an operation cannot proceed because of the
// current state of the record, for example re-creating an existing id.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an address already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned by account lookups for unknown users.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidRefresh covers unknown, revoked and expired refresh tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")
