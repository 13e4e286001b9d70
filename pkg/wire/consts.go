package wire

// ChannelType identifies the kind of a SPICE channel.
type ChannelType uint8

// Channel types from SpiceLinkMess.channel_type.
const (
	ChannelMain     ChannelType = 1
	ChannelDisplay  ChannelType = 2
	ChannelInputs   ChannelType = 3
	ChannelCursor   ChannelType = 4
	ChannelPlayback ChannelType = 5
	ChannelRecord   ChannelType = 6
)

func (t ChannelType) String() string {
	switch t {
	case ChannelMain:
		return "main"
	case ChannelDisplay:
		return "display"
	case ChannelInputs:
		return "inputs"
	case ChannelCursor:
		return "cursor"
	case ChannelPlayback:
		return "playback"
	case ChannelRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Common capability bits, shared across every channel type.
const (
	CapAuthSelection uint32 = 1 << 0
	CapMiniHeader    uint32 = 1 << 1
)

// AuthMethod selector values written after link when AUTH_SELECTION is
// negotiated.
const (
	AuthMethodSpice uint32 = 1
)

// Common message types (handled identically on every channel, §4.3.4).
const (
	MsgMigrate     uint16 = 1
	MsgMigrateData uint16 = 2
	MsgSetAck      uint16 = 3
	MsgPing        uint16 = 4
	MsgPong        uint16 = 5
	MsgNotify      uint16 = 6
	MsgAck         uint16 = 10
	MsgAckSync     uint16 = 11 // client -> server only; not a real wire-level server message
)

// MsgFirstAvailable is the first message type not reserved for a common
// message; channel-specific dispatch tables start numbering from here.
// Real channel-specific types begin at 101 per the upstream SPICE protocol;
// kept symbolic so channel packages don't hardcode the magic number.
const MsgFirstAvailable uint16 = 101

// Main channel message types.
const (
	MsgMainInit              uint16 = 103
	MsgMainAttachChannels    uint16 = 105
	MsgMainChannelsList      uint16 = 104
	MsgMainMouseMode         uint16 = 111
	MsgMainAgentConnected    uint16 = 116
	MsgMainAgentDisconnected uint16 = 117
	MsgMainAgentData         uint16 = 118
	MsgMainAgentToken        uint16 = 119
)

// Display channel message types (subset implemented by this client).
const (
	MsgDisplayMode          uint16 = 101
	MsgDisplayMark          uint16 = 102
	MsgDisplayInvalList     uint16 = 105
	MsgDisplayInvalAllPixmaps uint16 = 106
	MsgDisplayInvalPalette    uint16 = 107
	MsgDisplayInvalAllPalettes uint16 = 108

	MsgDisplayDrawFill        uint16 = 302
	MsgDisplayDrawOpaque      uint16 = 303
	MsgDisplayDrawCopy        uint16 = 304
	MsgDisplayDrawBlend       uint16 = 305
	MsgDisplayDrawTransparent uint16 = 307
	MsgDisplayDrawAlphaBlend  uint16 = 308
	MsgDisplayCopyBits        uint16 = 309

	MsgDisplayStreamCreate  uint16 = 122
	MsgDisplayStreamData    uint16 = 123
	MsgDisplayStreamClip    uint16 = 124
	MsgDisplayStreamDestroy uint16 = 125

	MsgDisplaySurfaceCreate  uint16 = 314
	MsgDisplaySurfaceDestroy uint16 = 315
)

// Image types, SpiceImage.type.
const (
	ImageTypeBitmap   uint8 = 0
	ImageTypeQUIC     uint8 = 1
	ImageTypeLZRGB    uint8 = 2
	ImageTypeJPEG     uint8 = 4
	ImageTypeZlibGLZ  uint8 = 6
	ImageTypeFromCache uint8 = 7
	ImageTypeLZ4      uint8 = 8
)

// SpiceImage.flags bits.
const (
	ImageFlagCacheMe        uint8 = 1 << 0
	ImageFlagHighBitsSet    uint8 = 1 << 1
	ImageFlagCacheReplaceMe uint8 = 1 << 2
)

// Pixel formats, SpiceBitmap.format.
const (
	BitmapFmt1A   uint8 = 1
	BitmapFmt555  uint8 = 3
	BitmapFmt565  uint8 = 4
	BitmapFmt32XRGB uint8 = 5
	BitmapFmt32ARGB uint8 = 6
)

// Surface creation flags.
const (
	SurfaceFlagPrimary uint32 = 1 << 0
)

// Clip types.
const (
	ClipTypeNone  uint8 = 0
	ClipTypeRects uint8 = 1
	ClipTypePath  uint8 = 2
)

// Scale modes for DRAW_COPY.
const (
	ScaleNearest     uint8 = 0
	ScaleInterpolate uint8 = 1
)

// Rop descriptors (only SRC-COPY is required; the display pipeline applies
// every rop as SRC-COPY).
const (
	RopSrcCopy uint8 = 1 << 0
)

// Notify severities.
const (
	NotifySeverityInfo  uint32 = 0
	NotifySeverityWarn  uint32 = 1
	NotifySeverityError uint32 = 2
)

// Mouse modes, MAIN_INIT.current_mouse_mode / MAIN_MOUSE_MODE.
const (
	MouseModeServer uint32 = 1
	MouseModeClient uint32 = 2
)

// Inputs channel message types, client -> server (§6 "Renderer -> client").
const (
	MsgInputsKeyDown      uint16 = 101
	MsgInputsKeyUp        uint16 = 102
	MsgInputsMouseMotion  uint16 = 111
	MsgInputsMousePosition uint16 = 112
	MsgInputsMousePress   uint16 = 113
	MsgInputsMouseRelease uint16 = 114
)

// Mouse button values (§6).
const (
	MouseButtonLeft     uint8 = 1
	MouseButtonMiddle   uint8 = 2
	MouseButtonRight    uint8 = 3
	MouseButtonWheelUp  uint8 = 4
	MouseButtonWheelDown uint8 = 5
)

// ScancodeExtendedPrefix marks an AT set-1 scancode that must be preceded
// by the 0xE0 escape byte (§6).
const ScancodeExtendedPrefix uint8 = 0xE0

// Cursor channel message types, server -> client.
const (
	MsgCursorInit    uint16 = 101
	MsgCursorSet     uint16 = 102
	MsgCursorMove    uint16 = 103
	MsgCursorHide    uint16 = 104
	MsgCursorReset   uint16 = 105
	MsgCursorInvalOne uint16 = 107
	MsgCursorInvalAll uint16 = 108
)

// Cursor shape types, SpiceCursorHeader.type.
const (
	CursorTypeARGB uint8 = 0
	CursorTypeMono uint8 = 1
)
