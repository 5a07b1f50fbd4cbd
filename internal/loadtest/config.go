// Package loadtest drives a running discovery service with randomized
// queries and verifies the ranking invariants on every response.
package loadtest

import "time"

// Default configuration constants.
const (
	DefaultNumQueries = 1000
	DefaultWorkers    = 8
	DefaultTimeout    = 10 * time.Second
)

// Config controls a load test run.
type Config struct {
	BaseURL    string
	NumQueries int
	Workers    int
	Timeout    time.Duration
	Verbose    bool
}

// normalized returns a copy with defaults applied.
func (c Config) normalized() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.NumQueries <= 0 {
		c.NumQueries = DefaultNumQueries
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
