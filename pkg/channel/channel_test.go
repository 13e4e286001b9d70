package channel

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/x509"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickemu-project/spice-go/pkg/transport"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return priv
}

func testMarshalPub(t *testing.T, pub *rsa.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return der
}

func testDecryptOAEP(t *testing.T, priv *rsa.PrivateKey, ciphertext []byte) []byte {
	t.Helper()
	plain, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, ciphertext, nil) //nolint:gosec
	require.NoError(t, err)
	return plain
}

// fakeServerConn wraps one side of a net.Pipe plus convenience read/write
// helpers for driving the client through a handshake in tests.
type fakeServerConn struct {
	t    *testing.T
	conn net.Conn
}

func (f *fakeServerConn) readN(n int) []byte {
	f.t.Helper()
	buf := make([]byte, n)
	_, err := ioReadFull(f.conn, buf)
	require.NoError(f.t, err)
	return buf
}

func ioReadFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (f *fakeServerConn) write(b []byte) {
	f.t.Helper()
	_, err := f.conn.Write(b)
	require.NoError(f.t, err)
}

func newPipe(t *testing.T) (*transport.TCPTransport, *fakeServerConn) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	ct := transport.NewTCP(client)
	return ct, &fakeServerConn{t: t, conn: server}
}

func TestLinkMinimalNoAuthNoCaps(t *testing.T) {
	// Scenario S1.
	ct, srv := newPipe(t)
	ch := New(ct, Config{
		ChannelType:            wire.ChannelMain,
		ChannelID:              0,
		AdvertiseMiniHeader:    false,
		AdvertiseAuthSelection: false,
		ConnectTimeout:         2 * time.Second,
	})

	linkDone := make(chan error, 1)
	go func() { linkDone <- ch.Link(context.Background()) }()

	headerBuf := srv.readN(16)
	header, err := wire.DecodeLinkHeader(headerBuf)
	require.NoError(t, err)
	assert.Equal(t, wire.LinkMagic, header.Magic)
	assert.Equal(t, uint32(2), header.Major)
	assert.Equal(t, uint32(2), header.Minor)

	messBuf := srv.readN(int(header.MsgSize))
	mess, err := wire.DecodeLinkMess(messBuf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), mess.ConnectionID)
	assert.Equal(t, uint8(wire.ChannelMain), mess.ChannelType)
	assert.Empty(t, mess.CommonCaps)
	assert.Empty(t, mess.ChannelCaps)

	// Server replies with no error, no caps. caps_offset must match the
	// client's own convention (20) for DecodeLinkReply to accept it.
	var pub [wire.LinkReplyPubKeySize]byte
	replyBody := wire.NewWriter().U32(0).Raw(pub[:]).U32(0).U32(0).U32(20).Bytes()
	srv.write(wire.EncodeLinkHeader(wire.LinkHeader{Magic: wire.LinkMagic, Major: 2, Minor: 2, MsgSize: uint32(len(replyBody))}))
	srv.write(replyBody)

	require.NoError(t, <-linkDone)
	assert.Equal(t, StateReady, ch.State())
	assert.False(t, ch.HasCommonCap(wire.CapMiniHeader))
}

func TestAuthSelectionAndTicket(t *testing.T) {
	// Scenario S2.
	ct, srv := newPipe(t)
	ch := New(ct, Config{
		ChannelType:            wire.ChannelMain,
		Password:               "hunter2",
		AdvertiseAuthSelection: true,
		AdvertiseMiniHeader:    false,
		ConnectTimeout:         2 * time.Second,
	})

	linkDone := make(chan error, 1)
	go func() { linkDone <- ch.Link(context.Background()) }()

	header := srv.readN(16)
	h, err := wire.DecodeLinkHeader(header)
	require.NoError(t, err)
	_ = srv.readN(int(h.MsgSize))

	priv := testRSAKey(t)
	der := testMarshalPub(t, &priv.PublicKey)
	var pub [wire.LinkReplyPubKeySize]byte
	require.LessOrEqual(t, len(der), len(pub))
	copy(pub[:], der)

	replyBody := wire.NewWriter().U32(0).Raw(pub[:]).U32(1).U32(0).U32(20).U32(wire.CapAuthSelection).Bytes()
	srv.write(wire.EncodeLinkHeader(wire.LinkHeader{Magic: wire.LinkMagic, Major: 2, Minor: 2, MsgSize: uint32(len(replyBody))}))
	srv.write(replyBody)

	selector := srv.readN(4)
	assert.Equal(t, []byte{1, 0, 0, 0}, selector)

	ciphertext := srv.readN(128)
	plain := testDecryptOAEP(t, priv, ciphertext)
	assert.Equal(t, []byte("hunter2\x00"), plain[:8])

	srv.write(wire.NewWriter().U32(0).Bytes())

	require.NoError(t, <-linkDone)
	assert.Equal(t, StateReady, ch.State())
}

func TestAckCadence(t *testing.T) {
	// Scenario S3: SET_ACK{generation=7,window=10} then 25 NOTIFY messages;
	// expect ACK_SYNC{7} then exactly 2 ACK messages.
	ct, srv := newPipe(t)
	ch := New(ct, Config{ChannelType: wire.ChannelMain, AdvertiseMiniHeader: false})
	ch.setState(StateReady)

	runDone := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { runDone <- ch.Run(ctx) }()

	recvMsg := func() wire.DataHeader {
		hdr := srv.readN(wire.StandardHeaderSize)
		h, err := wire.DecodeStandardHeader(hdr)
		require.NoError(t, err)
		if h.Size > 0 {
			srv.readN(int(h.Size))
		}
		return h
	}

	sendSetAck := func() {
		body := wire.SetAck{Generation: 7, Window: 10}
		payload := wire.NewWriter().U32(body.Generation).U32(body.Window).Bytes()
		srv.write(wire.EncodeStandardHeader(wire.DataHeader{Type: wire.MsgSetAck, Size: uint32(len(payload))}))
		srv.write(payload)
	}
	sendNotify := func() {
		msg := "x\x00"
		payload := wire.NewWriter().U32(0).U32(0).U32(0).U32(uint32(len(msg))).Raw([]byte(msg)).Bytes()
		srv.write(wire.EncodeStandardHeader(wire.DataHeader{Type: wire.MsgNotify, Size: uint32(len(payload))}))
		srv.write(payload)
	}

	sendSetAck()
	ackSync := recvMsg()
	assert.Equal(t, wire.MsgAckSync, ackSync.Type)

	ackCount := 0
	for i := 0; i < 25; i++ {
		sendNotify()
		if (i+1)%10 == 0 {
			ack := recvMsg()
			assert.Equal(t, wire.MsgAck, ack.Type)
			ackCount++
		}
	}
	assert.Equal(t, 2, ackCount)

	cancel()
	<-runDone
}

func TestPingPongVerbatim(t *testing.T) {
	// Scenario S4.
	ct, srv := newPipe(t)
	ch := New(ct, Config{ChannelType: wire.ChannelMain, AdvertiseMiniHeader: false})
	ch.setState(StateReady)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- ch.Run(ctx) }()

	payload := wire.NewWriter().U64(0x0102030405060708).U32(0x0A0B0C0D).Bytes()
	srv.write(wire.EncodeStandardHeader(wire.DataHeader{Type: wire.MsgPing, Size: uint32(len(payload))}))
	srv.write(payload)

	hdr := srv.readN(wire.StandardHeaderSize)
	h, err := wire.DecodeStandardHeader(hdr)
	require.NoError(t, err)
	assert.Equal(t, wire.MsgPong, h.Type)
	got := srv.readN(int(h.Size))
	assert.Equal(t, payload, got)

	cancel()
	<-runDone
}
