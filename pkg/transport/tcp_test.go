package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPTransportReadWrite(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	st := &TCPTransport{conn: server}
	ct := &TCPTransport{conn: client}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ct.WriteAll(ctx, []byte("hello world"))
	}()

	got, err := st.ReadExact(ctx, len("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	require.NoError(t, <-done)
}

func TestTCPTransportReadExactSpansWrites(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	st := &TCPTransport{conn: server}
	ct := &TCPTransport{conn: client}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		_ = ct.WriteAll(ctx, []byte("ab"))
		_ = ct.WriteAll(ctx, []byte("cd"))
		_ = ct.WriteAll(ctx, []byte("ef"))
	}()

	got, err := st.ReadExact(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))
}
