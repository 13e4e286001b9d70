package session

import (
	"fmt"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// mainChannelHandler handles the Main-channel-specific messages (§4.4):
// MAIN_INIT, MAIN_CHANNELS_LIST, MAIN_MOUSE_MODE, and agent plumbing.
// Agent data stays opaque to the core: each MAIN_AGENT_DATA fragment is
// handed to Session's onAgent callback verbatim as it arrives. Fragments are
// not reassembled, and agent tokens are only logged, not tracked.
type mainChannelHandler struct {
	session *Session
}

func (h *mainChannelHandler) HandleMessage(msgType uint16, payload []byte) error {
	s := h.session
	switch msgType {
	case wire.MsgMainInit:
		init, err := wire.DecodeMainInit(payload)
		if err != nil {
			return fmt.Errorf("decode MAIN_INIT: %w", err)
		}
		s.mu.Lock()
		s.sessionID = init.SessionID
		s.mu.Unlock()
		s.logger.Info("main channel initialized",
			"session_id", init.SessionID,
			"display_channels_hint", init.DisplayChannelsHint,
			"mouse_mode", init.CurrentMouseMode)
		return nil

	case wire.MsgMainChannelsList:
		list, err := wire.DecodeChannelsList(payload)
		if err != nil {
			return fmt.Errorf("decode MAIN_CHANNELS_LIST: %w", err)
		}
		s.setState(StateReady)
		// attachSubChannels dials concurrently and returns immediately;
		// it is not this handler's job to block the read loop.
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		s.attachSubChannels(ctx, list)
		return nil

	case wire.MsgMainMouseMode:
		mode, err := wire.DecodeMouseMode(payload)
		if err != nil {
			return fmt.Errorf("decode MAIN_MOUSE_MODE: %w", err)
		}
		s.logger.Debug("mouse mode changed", "current", mode.Current, "supported", mode.Supported)
		return nil

	case wire.MsgMainAgentConnected:
		s.logger.Info("agent connected")
		return nil

	case wire.MsgMainAgentDisconnected:
		s.logger.Info("agent disconnected")
		return nil

	case wire.MsgMainAgentData:
		data := wire.DecodeAgentData(payload)
		if s.onAgent != nil {
			s.onAgent(data.Payload)
		}
		return nil

	case wire.MsgMainAgentToken:
		tok, err := wire.DecodeAgentToken(payload)
		if err != nil {
			return fmt.Errorf("decode MAIN_AGENT_TOKEN: %w", err)
		}
		s.logger.Debug("agent tokens granted", "count", tok.NumTokens)
		return nil

	default:
		s.logger.Warn("unhandled main-channel message", "type", msgType, "size", len(payload))
		return nil
	}
}
