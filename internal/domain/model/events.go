package model

import "time"

// Realtime event names emitted to discovery clients when sessions mutate.
const (
	EventSessionCreated     = "discovery:session-created"
	EventSessionUpdated     = "discovery:session-updated"
	EventSessionTerminated  = "discovery:session-terminated"
	EventSessionReactivated = "discovery:session-reactivated"
)

// SessionEvent carries the full discovery view of a session. Used for
// created, updated and reactivated events.
type SessionEvent struct {
	Session   DiscoveryResult `json:"session"`
	Timestamp time.Time       `json:"timestamp"`
}

// SessionRef identifies a session that is no longer discoverable.
type SessionRef struct {
	ID        string `json:"id"`
	ShareCode string `json:"shareCode"`
}

// SessionTerminatedEvent is emitted when a session is cancelled or
// completed. Clients only need the identity to drop it from their views.
type SessionTerminatedEvent struct {
	Session   SessionRef `json:"session"`
	Timestamp time.Time  `json:"timestamp"`
}
