// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDSN is the SQLite data source for the session store.
	StoreDSN string `koanf:"store_dsn"`

	// StoreQueryTimeoutMS bounds every store query.
	StoreQueryTimeoutMS int `koanf:"store_query_timeout_ms"`

	// CacheCapacity bounds the number of cached responses.
	CacheCapacity int `koanf:"cache_capacity"`

	// CacheTTLSeconds sets how long cached responses stay fresh.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// EventQueueSize bounds the in-memory realtime event queue.
	EventQueueSize int `koanf:"queue_size"`

	// DispatcherCount sets the number of realtime dispatchers.
	DispatcherCount int `koanf:"dispatcher_count"`

	// Monitor thresholds. Hit rates are ratios in (0,1]; latencies in
	// milliseconds.
	HitRateWarning    float64 `koanf:"hit_rate_warning"`
	HitRateCritical   float64 `koanf:"hit_rate_critical"`
	LatencyWarningMS  float64 `koanf:"latency_warning_ms"`
	LatencyCriticalMS float64 `koanf:"latency_critical_ms"`
	SlowQueryMS       int     `koanf:"slow_query_ms"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		StoreDSN:            "courtside.db",
		StoreQueryTimeoutMS: 5_000,
		CacheCapacity:       1_000,
		CacheTTLSeconds:     300,
		EventQueueSize:      4_096,
		DispatcherCount:     2,
		HitRateWarning:      0.60,
		HitRateCritical:     0.40,
		LatencyWarningMS:    200,
		LatencyCriticalMS:   500,
		SlowQueryMS:         1_000,
		CORSOrigins:         []string{"*"},
	}
}
