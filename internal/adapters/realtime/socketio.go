// Package realtime pushes discovery events to connected clients over
// socket.io.
package realtime

import (
	"context"
	"net/http"

	socketio "github.com/googollee/go-socket.io"

	"github.com/courtside/courtside/pkg/logger"
)

// All discovery clients share one namespace and room; events are fanned
// out to everyone and filtered client-side.
const (
	defaultNamespace = "/"
	discoveryRoom    = "discovery"
)

// Broadcaster owns the socket.io server and implements the dispatcher
// sink.
type Broadcaster struct {
	server *socketio.Server
	log    logger.Logger
}

// Option applies a configuration option to the Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets a custom logger for the broadcaster.
func WithLogger(log logger.Logger) Option {
	return func(b *Broadcaster) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBroadcaster creates the socket.io server and registers the
// connection lifecycle handlers.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		server: socketio.NewServer(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Get().Named("realtime")
	}

	ctx := context.Background()

	b.server.OnConnect(defaultNamespace, func(conn socketio.Conn) error {
		conn.Join(discoveryRoom)
		b.log.Debug(ctx, "client connected", logger.String("socket_id", conn.ID()))
		return nil
	})

	b.server.OnDisconnect(defaultNamespace, func(conn socketio.Conn, reason string) {
		b.log.Debug(ctx, "client disconnected",
			logger.String("socket_id", conn.ID()),
			logger.String("reason", reason))
	})

	b.server.OnError(defaultNamespace, func(conn socketio.Conn, err error) {
		b.log.Warn(ctx, "socket error", logger.Error(err))
	})

	return b
}

// Broadcast emits one event to every connected discovery client. An
// empty room is not an error.
func (b *Broadcaster) Broadcast(event string, payload any) error {
	b.server.BroadcastToRoom(defaultNamespace, discoveryRoom, event, payload)
	return nil
}

// ClientCount returns the number of sockets in the discovery room.
func (b *Broadcaster) ClientCount() int {
	return b.server.RoomLen(defaultNamespace, discoveryRoom)
}

// Handler exposes the socket.io endpoint for mounting on the HTTP server.
func (b *Broadcaster) Handler() http.Handler {
	return b.server
}

// Serve runs the socket.io accept loop until Close.
func (b *Broadcaster) Serve() error {
	return b.server.Serve()
}

// Close shuts the socket.io server down.
func (b *Broadcaster) Close() error {
	return b.server.Close()
}
