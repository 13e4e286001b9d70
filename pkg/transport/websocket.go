package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport realizes Transport over a binary-frame WebSocket
// connection. Each inbound frame contributes bytes to an internal
// accumulator; frame boundaries are not preserved at this layer (§4.1) -
// ReadExact may span, split, or coalesce frames transparently.
type WebSocketTransport struct {
	conn *websocket.Conn

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

// DialWebSocketConfig configures a WebSocket dial.
type DialWebSocketConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	Header           http.Header
}

// DialWebSocket opens a binary-frame WebSocket connection to cfg.URL.
func DialWebSocket(ctx context.Context, cfg DialWebSocketConfig) (*WebSocketTransport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.URL, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket dial %s: %w", cfg.URL, err)
	}
	return &WebSocketTransport{conn: conn}, nil
}

// ReadExact reads exactly n bytes, pulling additional binary frames from the
// socket as needed to satisfy the request.
func (t *WebSocketTransport) ReadExact(ctx context.Context, n int) ([]byte, error) {
	for t.buf.Len() < n {
		if dl, ok := ctx.Deadline(); ok {
			_ = t.conn.SetReadDeadline(dl)
		} else {
			_ = t.conn.SetReadDeadline(time.Time{})
		}

		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, ErrConnectionClosed
			}
			return nil, fmt.Errorf("transport: websocket read: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		t.buf.Write(data)
	}

	out := make([]byte, n)
	if _, err := t.buf.Read(out); err != nil {
		return nil, fmt.Errorf("transport: websocket drain buffer: %w", err)
	}
	return out, nil
}

// WriteAll sends b as a single binary frame. The client must not impose any
// additional framing beyond the exact byte sequence (§6).
func (t *WebSocketTransport) WriteAll(ctx context.Context, b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(dl)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return fmt.Errorf("transport: websocket write: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
