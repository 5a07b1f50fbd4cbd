package loadtest

import "os"

// ShowHelp prints usage information for the load test command.
func ShowHelp() {
	help := `Discovery Load Test

Fires randomized discovery queries at a running service and verifies
the ranking invariants of every response.

Usage:
  loadtest [flags]

Flags:
  -url string        Base URL of the service (default "http://localhost:8080")
  -queries int       Number of queries to send (default 1000)
  -workers int       Number of concurrent workers (default 8)
  -timeout duration  HTTP request timeout (default 10s)
  -verbose           Log every failed request
  -help              Show this help

Examples:
  loadtest -url http://localhost:8080 -queries 5000 -workers 16
  loadtest -timeout 2s -verbose
`
	_, _ = os.Stdout.WriteString(help)
}
