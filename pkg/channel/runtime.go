package channel

import (
	"context"
	"fmt"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// Run drives the post-link read loop until ctx is cancelled, the transport
// closes, or a fatal protocol error occurs. It is meant to be called from
// its own goroutine; Send may be called concurrently from any goroutine
// (it only touches the buffered outbox channel).
func (c *Channel) Run(ctx context.Context) error {
	if c.State() != StateReady {
		return &ProtocolError{Detail: fmt.Sprintf("Run called in state %s, want Ready", c.State())}
	}

	writerDone := make(chan error, 1)
	go func() {
		writerDone <- c.writeLoop(ctx)
	}()

	// Cancellation must unblock a transport read in progress (§5): a bare
	// ctx.Done() check between reads is not enough once ReadExact is
	// already blocked, so closing the transport is what actually wakes it.
	go func() {
		<-ctx.Done()
		_ = c.tr.Close()
	}()

	readErr := c.readLoop(ctx)

	c.closed.Store(true)
	close(c.done)
	_ = c.tr.Close()

	<-writerDone

	if ctx.Err() != nil {
		// Cancellation: the read error is just the transport waking up from
		// being closed out from under it, not a protocol failure.
		c.setState(StateClosed)
		return ctx.Err()
	}
	if readErr != nil {
		c.setState(StateFailed)
		return readErr
	}
	c.setState(StateClosed)
	return nil
}

// Send enqueues a channel-specific outbound message. Safe for concurrent
// use; blocks if the outbox is full (back-pressure, not data loss).
func (c *Channel) Send(ctx context.Context, msgType uint16, payload []byte) error {
	if c.closed.Load() {
		return &ChannelClosedError{}
	}
	select {
	case c.outbox <- outboundMsg{msgType: msgType, payload: payload}:
		return nil
	case <-c.done:
		return &ChannelClosedError{}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg, ok := <-c.outbox:
			if !ok {
				return nil
			}
			if err := c.writeMessage(ctx, msg.msgType, msg.payload); err != nil {
				return err
			}
		case <-c.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Channel) writeMessage(ctx context.Context, msgType uint16, payload []byte) error {
	var header []byte
	if c.miniHeader {
		header = wire.EncodeMiniHeader(wire.DataHeader{Type: msgType, Size: uint32(len(payload))})
	} else {
		header = wire.EncodeStandardHeader(wire.DataHeader{Type: msgType, Size: uint32(len(payload))})
	}
	if err := c.tr.WriteAll(ctx, header); err != nil {
		return fmt.Errorf("channel: write header: %w", err)
	}
	if len(payload) > 0 {
		if err := c.tr.WriteAll(ctx, payload); err != nil {
			return fmt.Errorf("channel: write payload: %w", err)
		}
	}
	c.stats.MessagesOut.Add(1)
	return nil
}

func (c *Channel) readLoop(ctx context.Context) error {
	headerSize := wire.StandardHeaderSize
	if c.miniHeader {
		headerSize = wire.MiniHeaderSize
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		headerBuf, err := c.tr.ReadExact(ctx, headerSize)
		if err != nil {
			return fmt.Errorf("channel: read header: %w", err)
		}

		var h wire.DataHeader
		if c.miniHeader {
			h, err = wire.DecodeMiniHeader(headerBuf)
		} else {
			h, err = wire.DecodeStandardHeader(headerBuf)
			if err == nil && h.SubList != 0 {
				c.logger.Warn("ignoring non-zero sub_list", "sub_list", h.SubList)
			}
		}
		if err != nil {
			return fmt.Errorf("channel: decode header: %w", err)
		}

		payload, err := c.tr.ReadExact(ctx, int(h.Size))
		if err != nil {
			return fmt.Errorf("channel: read payload: %w", err)
		}
		c.stats.MessagesIn.Add(1)

		if err := c.dispatch(ctx, h.Type, payload); err != nil {
			return err
		}

		// SET_ACK resets the window itself; it does not count against it.
		if h.Type != wire.MsgSetAck {
			if err := c.maybeAck(ctx); err != nil {
				return err
			}
		}
	}
}

// dispatch handles the four common message types identically on every
// channel (§4.3.4); anything else goes to cfg.Handler. Unknown types are
// logged and skipped — the payload is already fully consumed by the time
// dispatch sees it, satisfying "msg_size bytes are consumed" (§7).
func (c *Channel) dispatch(ctx context.Context, msgType uint16, payload []byte) error {
	switch msgType {
	case wire.MsgMigrate, wire.MsgMigrateData:
		c.logger.Debug("ignoring migration message", "type", msgType)
		return nil

	case wire.MsgSetAck:
		ack, err := wire.DecodeSetAck(payload)
		if err != nil {
			return fmt.Errorf("channel: decode SET_ACK: %w", err)
		}
		c.ackMu.Lock()
		c.ackGeneration = ack.Generation
		c.ackWindow = ack.Window
		c.ackCount = 0
		c.ackMu.Unlock()
		return c.Send(ctx, wire.MsgAckSync, wire.AckSync{Generation: ack.Generation}.Encode())

	case wire.MsgPing:
		ping := wire.DecodePingRaw(payload)
		return c.Send(ctx, wire.MsgPong, ping.Encode())

	case wire.MsgNotify:
		n, err := wire.DecodeNotify(payload)
		if err != nil {
			return fmt.Errorf("channel: decode NOTIFY: %w", err)
		}
		c.logNotify(n)
		return nil

	default:
		if c.cfg.Handler == nil {
			c.logger.Warn("no handler registered, dropping message", "type", msgType, "size", len(payload))
			return nil
		}
		if err := c.cfg.Handler.HandleMessage(msgType, payload); err != nil {
			return fmt.Errorf("channel: handler for type %d: %w", msgType, err)
		}
		return nil
	}
}

func (c *Channel) logNotify(n wire.Notify) {
	switch n.Severity {
	case wire.NotifySeverityError:
		c.logger.Error("server notify", "what", n.What, "message", n.Message)
	case wire.NotifySeverityWarn:
		c.logger.Warn("server notify", "what", n.What, "message", n.Message)
	default:
		c.logger.Info("server notify", "what", n.What, "message", n.Message)
	}
}

// maybeAck emits an ACK once ackWindow data messages have been received
// since the last ack or SET_ACK (§4.3.4, §8 invariant 2).
func (c *Channel) maybeAck(ctx context.Context) error {
	c.ackMu.Lock()
	if c.ackWindow == 0 {
		c.ackMu.Unlock()
		return nil
	}
	c.ackCount++
	fire := c.ackCount >= c.ackWindow
	if fire {
		c.ackCount = 0
	}
	c.ackMu.Unlock()

	if !fire {
		return nil
	}
	c.stats.AcksSent.Add(1)
	return c.Send(ctx, wire.MsgAck, nil)
}

// StatsSnapshot returns a snapshot of diagnostic counters.
func (c *Channel) StatsSnapshot() (in, out, acks uint64) {
	return c.stats.MessagesIn.Load(), c.stats.MessagesOut.Load(), c.stats.AcksSent.Load()
}
