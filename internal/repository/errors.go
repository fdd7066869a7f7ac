// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrInsufficientCupo indicates that a booking raced against
// the last remaining room slot, while ErrConflict signals that an
// operation cannot proceed due to existing dependent records (e.g.
// deactivating a departure that still has reservations).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// deactivate a departure that still has active reservations.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInsufficientCupo is returned when a booking is attempted against
// a room whose remaining cupo on the departure is zero. Handlers
// should translate this into an HTTP 409 response.
var ErrInsufficientCupo = errors.New("insufficient cupo")

// ErrAlreadyCancelled is returned when a cancellation targets a
// reservation that is already in the cancelled state. The caller
// receives a failure rather than a silent no-op, and cupo is never
// released a second time.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")
