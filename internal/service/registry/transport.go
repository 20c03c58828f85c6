package registry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a control-frame write may block.
const writeWait = 10 * time.Second

// Transport is the registry's view of one live bidirectional connection.
// Implementations must tolerate Close being called more than once.
type Transport interface {
	WriteJSON(v any) error
	Ping() error
	Close() error
}

// WSTransport adapts a gorilla websocket connection. Gorilla connections
// allow only one concurrent writer, so all writes share a mutex.
type WSTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSTransport wraps an upgraded websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// WriteJSON sends one JSON message frame.
func (t *WSTransport) WriteJSON(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteJSON(v)
}

// Ping sends a transport-level ping control frame.
func (t *WSTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close closes the underlying connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}

// CloseWithReason writes a close frame with the given code and reason before
// closing, so clients see a policy code rather than an abrupt drop.
func (t *WSTransport) CloseWithReason(code int, reason string) error {
	t.mu.Lock()
	_ = t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait),
	)
	t.mu.Unlock()
	return t.conn.Close()
}
