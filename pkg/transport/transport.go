// Package transport abstracts the byte stream underlying a SPICE channel:
// a TCP socket or a WebSocket carrying binary frames. It is the only place
// in this module with platform-specific I/O (§4.1).
package transport

import (
	"context"
	"errors"
)

// Errors returned by Transport implementations.
var (
	ErrConnectionClosed = errors.New("transport: connection closed")
	ErrTimeout          = errors.New("transport: timeout")
)

// Transport is an ordered, reliable byte stream. ReadExact and WriteAll may
// suspend while the underlying stream completes I/O; both apply ctx's
// deadline, but cancelling ctx does not interrupt a call already blocked —
// Close does. No other operation on a Transport blocks.
type Transport interface {
	// ReadExact reads exactly n bytes, blocking until they are available.
	ReadExact(ctx context.Context, n int) ([]byte, error)
	// WriteAll writes all of b, blocking until accepted by the stream.
	WriteAll(ctx context.Context, b []byte) error
	// Close releases the underlying connection. Safe to call more than once.
	Close() error
}
