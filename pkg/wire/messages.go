package wire

// SetAck is SPICE_MSG_SET_ACK, server -> client.
type SetAck struct {
	Generation uint32
	Window     uint32
}

// DecodeSetAck parses a SET_ACK body.
func DecodeSetAck(buf []byte) (SetAck, error) {
	r := NewReader(buf)
	m := SetAck{Generation: r.U32(), Window: r.U32()}
	return m, r.Err()
}

// AckSync is SPICE_MSGC_ACK_SYNC, client -> server, sent once right after a
// SET_ACK is processed.
type AckSync struct {
	Generation uint32
}

// Encode serializes the message.
func (m AckSync) Encode() []byte {
	return NewWriter().U32(m.Generation).Bytes()
}

// PingRaw is the captured SPICE_MSG_PING payload. Ping/pong round-trips
// must echo the payload bit-for-bit (§8 invariant 3), so the client never
// decodes individual fields out of it — it only needs the raw bytes back.
type PingRaw struct {
	Payload []byte
}

// DecodePingRaw captures the PING payload verbatim for bit-exact echo.
func DecodePingRaw(buf []byte) PingRaw {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return PingRaw{Payload: cp}
}

// Encode returns the PONG payload: identical bytes to the received PING.
func (p PingRaw) Encode() []byte {
	cp := make([]byte, len(p.Payload))
	copy(cp, p.Payload)
	return cp
}

// Notify is SPICE_MSG_NOTIFY, server -> client.
type Notify struct {
	Severity   uint32
	Visibility uint32
	What       uint32
	Message    string
}

// DecodeNotify parses a NOTIFY body: severity, visibility, what, then a
// u32 message length followed by that many bytes (including a trailing
// NUL the server includes in the length).
func DecodeNotify(buf []byte) (Notify, error) {
	r := NewReader(buf)
	n := Notify{
		Severity:   r.U32(),
		Visibility: r.U32(),
		What:       r.U32(),
	}
	msgLen := r.U32()
	msg := r.Bytes(int(msgLen))
	if r.Err() != nil {
		return Notify{}, r.Err()
	}
	if l := len(msg); l > 0 && msg[l-1] == 0 {
		msg = msg[:l-1]
	}
	n.Message = string(msg)
	return n, nil
}

// MainInit is SPICE_MSG_MAIN_INIT, server -> client, main channel only.
type MainInit struct {
	SessionID            uint32
	DisplayChannelsHint  uint32
	SupportedMouseModes  uint32
	CurrentMouseMode     uint32
	AgentConnected       uint32
	AgentTokens          uint32
	MultiMediaTime       uint32
	RAMHint              uint32
}

// DecodeMainInit parses a MAIN_INIT body.
func DecodeMainInit(buf []byte) (MainInit, error) {
	r := NewReader(buf)
	m := MainInit{
		SessionID:           r.U32(),
		DisplayChannelsHint: r.U32(),
		SupportedMouseModes: r.U32(),
		CurrentMouseMode:    r.U32(),
		AgentConnected:      r.U32(),
		AgentTokens:         r.U32(),
		MultiMediaTime:      r.U32(),
		RAMHint:             r.U32(),
	}
	return m, r.Err()
}

// ChannelsListEntry is one {type, id} pair in MAIN_CHANNELS_LIST.
type ChannelsListEntry struct {
	Type ChannelType
	ID   uint8
}

// ChannelsList is SPICE_MSG_MAIN_CHANNELS_LIST, server -> client.
type ChannelsList struct {
	Entries []ChannelsListEntry
}

// DecodeChannelsList parses a MAIN_CHANNELS_LIST body.
func DecodeChannelsList(buf []byte) (ChannelsList, error) {
	r := NewReader(buf)
	n := r.U32()
	list := ChannelsList{Entries: make([]ChannelsListEntry, 0, n)}
	for i := uint32(0); i < n; i++ {
		t := r.U8()
		id := r.U8()
		if r.Err() != nil {
			return ChannelsList{}, r.Err()
		}
		list.Entries = append(list.Entries, ChannelsListEntry{Type: ChannelType(t), ID: id})
	}
	return list, r.Err()
}

// MouseMode is SPICE_MSG_MAIN_MOUSE_MODE, server -> client.
type MouseMode struct {
	Supported uint32
	Current   uint32
}

// DecodeMouseMode parses a MAIN_MOUSE_MODE body.
func DecodeMouseMode(buf []byte) (MouseMode, error) {
	r := NewReader(buf)
	m := MouseMode{Supported: r.U32(), Current: r.U32()}
	return m, r.Err()
}

// AgentData is one SPICE_MSG_MAIN_AGENT_DATA fragment; the payload is
// opaque to the core (§4.4).
type AgentData struct {
	Payload []byte
}

// DecodeAgentData captures the raw fragment bytes.
func DecodeAgentData(buf []byte) AgentData {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return AgentData{Payload: cp}
}

// AgentToken is SPICE_MSG_MAIN_AGENT_TOKEN, server -> client.
type AgentToken struct {
	NumTokens uint32
}

// DecodeAgentToken parses an AGENT_TOKEN body.
func DecodeAgentToken(buf []byte) (AgentToken, error) {
	r := NewReader(buf)
	return AgentToken{NumTokens: r.U32()}, r.Err()
}
