package api

import (
	"errors"

	"github.com/courtside/courtside/internal/adapters/repository"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrSessionNotFound = errors.New("session not found")
	ErrInternal        = errors.New("internal error")
)

// isNotFound reports whether err means the session is not discoverable.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
