package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound marks a lookup for an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrUpstream marks a store timeout or availability failure. The
	// discovery request fails rather than returning partial data.
	ErrUpstream = errors.New("session store unavailable")
)
