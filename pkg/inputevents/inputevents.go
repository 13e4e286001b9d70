// Package inputevents implements the encode side of the Inputs channel
// (§6 "Renderer -> client"): translating renderer-originated key and mouse
// events into the wire messages sent on a channel.Channel bound to the
// Inputs channel type.
package inputevents

import (
	"context"

	"github.com/quickemu-project/spice-go/pkg/channel"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// Scancode is a PC/AT set-1 scancode, optionally extended (the 0xE0
// prefix). Extended codes are encoded as the two-byte sequence
// [0xE0, Code]; plain codes as the single byte [Code] (§6).
type Scancode struct {
	Code     uint8
	Extended bool
}

func (s Scancode) encode() []byte {
	if s.Extended {
		return []byte{wire.ScancodeExtendedPrefix, s.Code}
	}
	return []byte{s.Code}
}

// Sender is the subset of channel.Channel this package needs: one method,
// so tests can substitute a fake without standing up a real transport.
type Sender interface {
	Send(ctx context.Context, msgType uint16, payload []byte) error
}

var _ Sender = (*channel.Channel)(nil)

// Encoder sends Inputs-channel events over an attached channel.
type Encoder struct {
	ch Sender
}

// NewEncoder wraps an Inputs-channel Sender (normally a *channel.Channel
// returned by Session.Channel(wire.ChannelInputs)).
func NewEncoder(ch Sender) *Encoder {
	return &Encoder{ch: ch}
}

// KeyDown sends SPICE_MSGC_INPUTS_KEY_DOWN for scancode.
func (e *Encoder) KeyDown(ctx context.Context, sc Scancode) error {
	return e.ch.Send(ctx, wire.MsgInputsKeyDown, sc.encode())
}

// KeyUp sends SPICE_MSGC_INPUTS_KEY_UP for scancode.
func (e *Encoder) KeyUp(ctx context.Context, sc Scancode) error {
	return e.ch.Send(ctx, wire.MsgInputsKeyUp, sc.encode())
}

// MousePosition sends SPICE_MSGC_INPUTS_MOUSE_POSITION (client-mouse mode):
// absolute coordinates plus the full button mask and target display id.
func (e *Encoder) MousePosition(ctx context.Context, x, y int32, buttonMask uint16, displayID uint8) error {
	payload := wire.NewWriter().I32(x).I32(y).U16(buttonMask).U8(displayID).Bytes()
	return e.ch.Send(ctx, wire.MsgInputsMousePosition, payload)
}

// MouseMotion sends SPICE_MSGC_INPUTS_MOUSE_MOTION (server-mouse mode):
// a relative delta plus the full button mask.
func (e *Encoder) MouseMotion(ctx context.Context, dx, dy int32, buttonMask uint16) error {
	payload := wire.NewWriter().I32(dx).I32(dy).U16(buttonMask).Bytes()
	return e.ch.Send(ctx, wire.MsgInputsMouseMotion, payload)
}

// MousePress sends SPICE_MSGC_INPUTS_MOUSE_PRESS for button (§6 button
// value table).
func (e *Encoder) MousePress(ctx context.Context, button uint8, buttonMask uint16) error {
	payload := wire.NewWriter().U8(button).U16(buttonMask).Bytes()
	return e.ch.Send(ctx, wire.MsgInputsMousePress, payload)
}

// MouseRelease sends SPICE_MSGC_INPUTS_MOUSE_RELEASE for button.
func (e *Encoder) MouseRelease(ctx context.Context, button uint8, buttonMask uint16) error {
	payload := wire.NewWriter().U8(button).U16(buttonMask).Bytes()
	return e.ch.Send(ctx, wire.MsgInputsMouseRelease, payload)
}
