// Package cursor implements the Cursor channel (§4.5's sibling: cursor
// shape and position updates), decoding server messages and forwarding
// them to an external sink.Sink. The wire message shapes follow the
// upstream SPICE cursor protocol; spec.md leaves this channel's wire
// format unspecified beyond the Sink callbacks it must drive, so the
// message ids and decode structs here are this client's own invented but
// conventional choice (see DESIGN.md).
package cursor

import (
	"log/slog"

	"github.com/quickemu-project/spice-go/pkg/sink"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// Handler implements channel.Handler for the Cursor channel.
type Handler struct {
	sink   sink.Sink
	logger *slog.Logger
}

// NewHandler builds a cursor Handler delivering shape and position updates
// to snk.
func NewHandler(snk sink.Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sink: snk, logger: logger}
}

// HandleMessage dispatches one Cursor-channel message.
func (h *Handler) HandleMessage(msgType uint16, payload []byte) error {
	switch msgType {
	case wire.MsgCursorInit:
		m, err := wire.DecodeCursorInit(payload)
		if err != nil {
			return err
		}
		h.sink.CursorPosition(m.X, m.Y)
		h.sink.CursorShape(toSinkShape(m.Shape))
		return nil

	case wire.MsgCursorSet:
		m, err := wire.DecodeCursorSet(payload)
		if err != nil {
			return err
		}
		h.sink.CursorPosition(m.X, m.Y)
		h.sink.CursorShape(toSinkShape(m.Shape))
		return nil

	case wire.MsgCursorMove:
		m, err := wire.DecodeCursorMove(payload)
		if err != nil {
			return err
		}
		h.sink.CursorPosition(m.X, m.Y)
		return nil

	case wire.MsgCursorHide:
		h.sink.CursorHidden()
		return nil

	case wire.MsgCursorReset:
		// No state is held in this package (the sink owns whatever cursor
		// state it renders), so RESET is just a hide.
		h.sink.CursorHidden()
		return nil

	case wire.MsgCursorInvalOne, wire.MsgCursorInvalAll:
		// This client keeps no cursor shape cache of its own; nothing to
		// invalidate.
		return nil

	default:
		h.logger.Debug("unhandled cursor message", "type", msgType)
		return nil
	}
}

func toSinkShape(m wire.CursorShapeMsg) sink.CursorShape {
	return sink.CursorShape{
		Width:  int(m.Width),
		Height: int(m.Height),
		HotX:   int(m.HotX),
		HotY:   int(m.HotY),
		ARGB:   m.ARGB,
	}
}
