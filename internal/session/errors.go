package session

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for an id,
	// including sessions whose expiry has passed
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateSession is returned when creating with an id that exists
	ErrDuplicateSession = errors.New("session already exists")

	// ErrInvalidDuration is returned when an extension is zero or negative
	ErrInvalidDuration = errors.New("extension duration must be positive")

	// ErrStorageTimeout is returned when the state store misses its deadline
	ErrStorageTimeout = errors.New("session storage timed out")

	// ErrStorageUnavailable is returned on connection-level storage failure
	ErrStorageUnavailable = errors.New("session storage unavailable")
)
