// Package repository implements all database queries for the booking system.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrRoomUnavailable is returned when a room category has no remaining
// inventory for the requested number of rooms.
var ErrRoomUnavailable = errors.New("room has no remaining availability")

// ErrBookingCancelled is returned when an operation targets a booking that
// was already cancelled.
var ErrBookingCancelled = errors.New("booking is already cancelled")
