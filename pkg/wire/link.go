package wire

import "fmt"

// LinkMagic is the 4 ASCII bytes every SpiceLinkHeader starts with
// ("REDQ" -> 0x52 0x45 0x44 0x51 on the wire).
var LinkMagic = [4]byte{'R', 'E', 'D', 'Q'}

// ProtocolMajor and ProtocolMinor are the only link-protocol version this
// client speaks.
const (
	ProtocolMajor uint32 = 2
	ProtocolMinor uint32 = 2
)

// LinkHeader is the 16-byte preamble sent/received before a SpiceLinkMess or
// SpiceLinkReply.
type LinkHeader struct {
	Magic   [4]byte
	Major   uint32
	Minor   uint32
	MsgSize uint32
}

// EncodeLinkHeader writes the 16-byte header.
func EncodeLinkHeader(h LinkHeader) []byte {
	w := NewWriterSize(16)
	w.Raw(h.Magic[:]).U32(h.Major).U32(h.Minor).U32(h.MsgSize)
	return w.Bytes()
}

// DecodeLinkHeader parses exactly 16 bytes.
func DecodeLinkHeader(buf []byte) (LinkHeader, error) {
	if len(buf) != 16 {
		return LinkHeader{}, fmt.Errorf("wire: link header must be 16 bytes, got %d", len(buf))
	}
	r := NewReader(buf)
	var h LinkHeader
	copy(h.Magic[:], r.Bytes(4))
	h.Major = r.U32()
	h.Minor = r.U32()
	h.MsgSize = r.U32()
	return h, r.Err()
}

// capsOffset is the fixed byte offset from the start of SpiceLinkMess to the
// first capability word: 4 (connection_id) + 1 (channel_type) + 1
// (channel_id) + 4 (num_common_caps) + 4 (num_channel_caps) + 4 (caps_offset
// field itself) = 18 bytes of fixed fields, followed by 2 zero padding bytes,
// = 20.
const capsOffset = 20

// LinkMess is SpiceLinkMess, the client's (or, for sub-channel attach
// replies, the server's) per-connection link body.
type LinkMess struct {
	ConnectionID    uint32
	ChannelType     uint8
	ChannelID       uint8
	CommonCaps      []uint32
	ChannelCaps     []uint32
}

// Encode serializes the message, including the caps_offset field.
func (m LinkMess) Encode() []byte {
	w := NewWriterSize(capsOffset + 4*(len(m.CommonCaps)+len(m.ChannelCaps)))
	w.U32(m.ConnectionID)
	w.U8(m.ChannelType)
	w.U8(m.ChannelID)
	w.U32(uint32(len(m.CommonCaps)))
	w.U32(uint32(len(m.ChannelCaps)))
	w.U32(capsOffset)
	w.Pad(capsOffset - w.Len())
	for _, c := range m.CommonCaps {
		w.U32(c)
	}
	for _, c := range m.ChannelCaps {
		w.U32(c)
	}
	return w.Bytes()
}

// DecodeLinkMess parses a SpiceLinkMess body of exactly len(buf) bytes.
func DecodeLinkMess(buf []byte) (LinkMess, error) {
	r := NewReader(buf)
	var m LinkMess
	m.ConnectionID = r.U32()
	m.ChannelType = r.U8()
	m.ChannelID = r.U8()
	numCommon := r.U32()
	numChannel := r.U32()
	off := r.U32()
	if r.Err() != nil {
		return LinkMess{}, r.Err()
	}
	if int(off) != capsOffset {
		return LinkMess{}, fmt.Errorf("wire: unexpected caps_offset %d (want %d)", off, capsOffset)
	}
	r.Skip(capsOffset - r.off)
	m.CommonCaps = make([]uint32, numCommon)
	for i := range m.CommonCaps {
		m.CommonCaps[i] = r.U32()
	}
	m.ChannelCaps = make([]uint32, numChannel)
	for i := range m.ChannelCaps {
		m.ChannelCaps[i] = r.U32()
	}
	return m, r.Err()
}

// LinkReplyPubKeySize is the DER-encoded SubjectPublicKeyInfo size the
// server always sends for its 1024-bit RSA key.
const LinkReplyPubKeySize = 162

// LinkReply is SpiceLinkReply, the server's response to the client's
// SpiceLinkMess.
type LinkReply struct {
	Error       uint32
	PubKey      [LinkReplyPubKeySize]byte
	CommonCaps  []uint32
	ChannelCaps []uint32
}

// DecodeLinkReply parses a SpiceLinkReply body.
func DecodeLinkReply(buf []byte) (LinkReply, error) {
	r := NewReader(buf)
	var rep LinkReply
	rep.Error = r.U32()
	copy(rep.PubKey[:], r.Bytes(LinkReplyPubKeySize))
	numCommon := r.U32()
	numChannel := r.U32()
	off := r.U32()
	if r.Err() != nil {
		return LinkReply{}, r.Err()
	}
	if int(off) != capsOffset {
		return LinkReply{}, fmt.Errorf("wire: unexpected caps_offset %d (want %d)", off, capsOffset)
	}
	rep.CommonCaps = make([]uint32, numCommon)
	for i := range rep.CommonCaps {
		rep.CommonCaps[i] = r.U32()
	}
	rep.ChannelCaps = make([]uint32, numChannel)
	for i := range rep.ChannelCaps {
		rep.ChannelCaps[i] = r.U32()
	}
	return rep, r.Err()
}

// StandardHeaderSize is the per-message header size when MINI_HEADER is not
// in effect.
const StandardHeaderSize = 18

// MiniHeaderSize is the per-message header size once both sides negotiate
// MINI_HEADER.
const MiniHeaderSize = 6

// DataHeader is the decoded form of either header shape; Serial and SubList
// are zero when the channel uses the mini header.
type DataHeader struct {
	Serial  uint64
	Type    uint16
	Size    uint32
	SubList uint32
}

// EncodeStandardHeader writes the 18-byte form.
func EncodeStandardHeader(h DataHeader) []byte {
	w := NewWriterSize(StandardHeaderSize)
	w.U64(h.Serial).U16(h.Type).U32(h.Size).U32(h.SubList)
	return w.Bytes()
}

// DecodeStandardHeader parses exactly 18 bytes.
func DecodeStandardHeader(buf []byte) (DataHeader, error) {
	if len(buf) != StandardHeaderSize {
		return DataHeader{}, fmt.Errorf("wire: standard header must be %d bytes, got %d", StandardHeaderSize, len(buf))
	}
	r := NewReader(buf)
	h := DataHeader{
		Serial: r.U64(),
		Type:   r.U16(),
		Size:   r.U32(),
	}
	h.SubList = r.U32()
	return h, r.Err()
}

// EncodeMiniHeader writes the 6-byte form.
func EncodeMiniHeader(h DataHeader) []byte {
	w := NewWriterSize(MiniHeaderSize)
	w.U16(h.Type).U32(h.Size)
	return w.Bytes()
}

// DecodeMiniHeader parses exactly 6 bytes.
func DecodeMiniHeader(buf []byte) (DataHeader, error) {
	if len(buf) != MiniHeaderSize {
		return DataHeader{}, fmt.Errorf("wire: mini header must be %d bytes, got %d", MiniHeaderSize, len(buf))
	}
	r := NewReader(buf)
	return DataHeader{Type: r.U16(), Size: r.U32()}, r.Err()
}
