package models

import "errors"

// Storage-level errors returned by every Store implementation.
var (
	ErrNotFound     = errors.New("record not found")
	ErrStaleVersion = errors.New("record was modified concurrently")
	// ErrDuplicate reports a write that collided with a uniqueness rule,
	// usually because a concurrent request got there first.
	ErrDuplicate = errors.New("record already exists")
)
