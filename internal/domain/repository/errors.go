package repository

import "errors"

var (
	// ErrStoreUnavailable indicates the persistent store could not serve the
	// request (connection failure, pool acquisition timeout, query error).
	ErrStoreUnavailable = errors.New("persistent store unavailable")

	// ErrEventNotFound indicates no event matched the lookup.
	ErrEventNotFound = errors.New("event not found")
)
