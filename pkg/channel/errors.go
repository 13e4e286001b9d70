package channel

import "fmt"

// LinkError is returned when the server's SpiceLinkReply carries a non-zero
// error code (§4.3.1).
type LinkError struct {
	Code uint32
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("channel: link error %d", e.Code)
}

// AuthenticationFailed is returned when the 4-byte auth_reply is non-zero
// (§4.3.2).
type AuthenticationFailed struct {
	Code uint32
}

func (e *AuthenticationFailed) Error() string {
	return fmt.Sprintf("channel: authentication failed (code %d)", e.Code)
}

// UnsupportedCapability is returned when a server-mandatory capability this
// client does not implement is encountered.
type UnsupportedCapability struct {
	Name string
}

func (e *UnsupportedCapability) Error() string {
	return fmt.Sprintf("channel: unsupported capability %q", e.Name)
}

// ProtocolError wraps an unexpected-bytes / size-mismatch / unknown
// mandatory message condition.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("channel: protocol error: %s", e.Detail)
}

// ChannelClosedError is returned by operations attempted after Close.
type ChannelClosedError struct{}

func (e *ChannelClosedError) Error() string { return "channel: closed" }
