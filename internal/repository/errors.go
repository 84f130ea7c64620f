// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// dialogue handlers to distinguish between different failure scenarios.
// For example, ErrAlreadyCompleted indicates that a second staff member
// tried to close a ticket that was completed moments earlier, while
// ErrExists signals that an insert collided with an existing record.
package repository

import "errors"

// ErrNotFound is returned when a referenced ticket, user or resident does
// not exist. Callers surface it to the user and write no log entry.
var ErrNotFound = errors.New("not found")

// ErrAlreadyCompleted is returned when completing a ticket whose status is
// already 'completed'. The first completion wins; the conflict is reported,
// never silently overwritten.
var ErrAlreadyCompleted = errors.New("ticket already completed")

// ErrExists is returned when an insert hits a unique constraint, such as
// adding an agent with a chat id that is already registered.
var ErrExists = errors.New("already exists")
