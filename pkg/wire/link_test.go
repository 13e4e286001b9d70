package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkHeaderRoundTrip(t *testing.T) {
	h := LinkHeader{Magic: LinkMagic, Major: ProtocolMajor, Minor: ProtocolMinor, MsgSize: 24}
	buf := EncodeLinkHeader(h)
	require.Len(t, buf, 16)

	got, err := DecodeLinkHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestLinkHeaderS1Bytes(t *testing.T) {
	// Scenario S1: first 16 bytes of the minimal main-channel link.
	h := LinkHeader{Magic: LinkMagic, Major: 2, Minor: 2, MsgSize: 0x18}
	buf := EncodeLinkHeader(h)
	want := []byte{
		0x52, 0x45, 0x44, 0x51,
		0x02, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x18, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, buf)
}

func TestLinkMessRoundTrip(t *testing.T) {
	m := LinkMess{
		ConnectionID: 0,
		ChannelType:  uint8(ChannelMain),
		ChannelID:    0,
		CommonCaps:   nil,
		ChannelCaps:  nil,
	}
	buf := m.Encode()
	require.Len(t, buf, capsOffset)

	got, err := DecodeLinkMess(buf)
	require.NoError(t, err)
	assert.Equal(t, m.ConnectionID, got.ConnectionID)
	assert.Equal(t, m.ChannelType, got.ChannelType)
	assert.Equal(t, m.ChannelID, got.ChannelID)
	assert.Empty(t, got.CommonCaps)
	assert.Empty(t, got.ChannelCaps)
}

func TestLinkMessS1Bytes(t *testing.T) {
	// Scenario S1: bytes 16-35 are the SpiceLinkMess with no caps advertised.
	m := LinkMess{ConnectionID: 0, ChannelType: uint8(ChannelMain), ChannelID: 0}
	buf := m.Encode()
	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x01,
		0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x14, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	assert.Equal(t, want, buf)
}

func TestLinkMessWithCaps(t *testing.T) {
	m := LinkMess{
		ConnectionID: 7,
		ChannelType:  uint8(ChannelDisplay),
		ChannelID:    1,
		CommonCaps:   []uint32{CapAuthSelection | CapMiniHeader},
		ChannelCaps:  []uint32{0xdeadbeef, 0x1},
	}
	buf := m.Encode()
	got, err := DecodeLinkMess(buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestLinkReplyRoundTrip(t *testing.T) {
	var pub [LinkReplyPubKeySize]byte
	for i := range pub {
		pub[i] = byte(i)
	}
	w := NewWriter()
	w.U32(0)
	w.Raw(pub[:])
	w.U32(1)
	w.U32(0)
	w.U32(capsOffset)
	w.U32(CapAuthSelection)

	got, err := DecodeLinkReply(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got.Error)
	assert.Equal(t, pub, got.PubKey)
	assert.Equal(t, []uint32{CapAuthSelection}, got.CommonCaps)
	assert.Empty(t, got.ChannelCaps)
}

func TestDataHeaderRoundTrip(t *testing.T) {
	h := DataHeader{Serial: 1234, Type: 42, Size: 99, SubList: 0}
	buf := EncodeStandardHeader(h)
	require.Len(t, buf, StandardHeaderSize)
	got, err := DecodeStandardHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestMiniHeaderRoundTrip(t *testing.T) {
	h := DataHeader{Type: 7, Size: 1024}
	buf := EncodeMiniHeader(h)
	require.Len(t, buf, MiniHeaderSize)
	got, err := DecodeMiniHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestRectPointRoundTrip(t *testing.T) {
	rect := Rect{Left: 1, Top: 2, Right: 10, Bottom: 20}
	w := NewWriter()
	rect.Write(w)
	r := NewReader(w.Bytes())
	assert.Equal(t, rect, ReadRect(r))

	pt := Point{X: -5, Y: 7}
	w2 := NewWriter()
	pt.Write(w2)
	r2 := NewReader(w2.Bytes())
	assert.Equal(t, pt, ReadPoint(r2))
}
