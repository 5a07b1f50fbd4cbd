// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// queryFloat parses an optional float query parameter.
func queryFloat(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: not a number", name)
	}
	return &v, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: not an integer", name)
	}
	return &v, nil
}

// queryTime parses an optional RFC3339 query parameter.
func queryTime(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: must be RFC3339", name)
	}
	return &v, nil
}
