package repository

import "time"

// StoreOption applies a configuration option to the SQLStore.
type StoreOption func(*SQLStore)

// WithQueryTimeout bounds every store operation. Queries exceeding it
// surface as ErrUpstream rather than hanging a discovery request.
func WithQueryTimeout(timeout time.Duration) StoreOption {
	return func(s *SQLStore) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}
