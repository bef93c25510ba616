package repository

import "errors"

var (
	// ErrNotFound is returned when a row the caller referenced does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert collides with a uniqueness
	// constraint (username, email, follow edge, like).
	ErrDuplicate = errors.New("duplicate")
)
