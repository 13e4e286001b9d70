// Package channel implements the per-channel state machine: link,
// authentication, capability storage, ack-window flow control, ping/pong,
// and the post-link header framing choice (§4.3).
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickemu-project/spice-go/pkg/auth"
	"github.com/quickemu-project/spice-go/pkg/transport"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// Handler receives channel-specific messages once the channel is Ready.
// Common messages (§4.3.4) are handled by the Channel itself and never
// reach Handler. Returning an error tears the channel down.
type Handler interface {
	HandleMessage(msgType uint16, payload []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(msgType uint16, payload []byte) error

// HandleMessage calls f.
func (f HandlerFunc) HandleMessage(msgType uint16, payload []byte) error { return f(msgType, payload) }

// Config configures a single channel's link and runtime behavior.
type Config struct {
	ChannelType  wire.ChannelType
	ChannelID    uint8
	ConnectionID uint32 // 0 on Main; Main's session_id on sub-channels

	Password string // empty = no auth

	AdvertiseMiniHeader    bool
	AdvertiseChannelCaps   []uint32 // channel-type-specific caps this client supports
	AdvertiseAuthSelection bool

	ConnectTimeout time.Duration

	Handler Handler
	Logger  *slog.Logger

	// OutboxSize bounds the outbound message queue depth.
	OutboxSize int
}

type outboundMsg struct {
	msgType uint16
	payload []byte
}

// Channel drives one SPICE channel end to end: link, auth, then the
// steady-state read/dispatch loop. Exactly one goroutine ever touches a
// Channel's mutable state after Ready — the read loop — other than the
// writer goroutine draining outbox, per §5 "cooperative, per-channel".
type Channel struct {
	cfg    Config
	tr     transport.Transport
	logger *slog.Logger

	state   atomic.Int32
	stateMu sync.Mutex

	effectiveCommonCaps  uint32
	effectiveChannelCaps []uint32
	miniHeader           bool

	ackGeneration uint32
	ackWindow     uint32
	ackCount      uint32
	ackMu         sync.Mutex

	outbox chan outboundMsg
	done   chan struct{}
	closed atomic.Bool

	lastPingID uint32

	stats Stats
}

// Stats is read-only diagnostic state, not part of the protocol.
type Stats struct {
	MessagesIn  atomic.Uint64
	MessagesOut atomic.Uint64
	AcksSent    atomic.Uint64
}

// New constructs a Channel bound to tr, not yet linked.
func New(tr transport.Transport, cfg Config) *Channel {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OutboxSize == 0 {
		cfg.OutboxSize = 64
	}
	c := &Channel{
		cfg:    cfg,
		tr:     tr,
		logger: cfg.Logger.With("channel_type", cfg.ChannelType.String(), "channel_id", cfg.ChannelID),
		outbox: make(chan outboundMsg, cfg.OutboxSize),
		done:   make(chan struct{}),
	}
	c.state.Store(int32(StateDial))
	return c
}

// State returns the channel's current state.
func (c *Channel) State() State {
	return State(c.state.Load())
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
}

// EffectiveCommonCaps returns the negotiated common capability bitmask
// (advertised & server-returned, §3 "Capability sets").
func (c *Channel) EffectiveCommonCaps() uint32 {
	return c.effectiveCommonCaps
}

// EffectiveChannelCaps returns the negotiated channel-specific cap words.
func (c *Channel) EffectiveChannelCaps() []uint32 {
	return c.effectiveChannelCaps
}

// HasCommonCap reports whether bit is set in the effective common caps.
func (c *Channel) HasCommonCap(bit uint32) bool {
	return c.effectiveCommonCaps&bit != 0
}

// Link runs the full handshake: SendLinkHeader through Ready|Failed.
// Sub-channels pass the connection_id (session_id) issued by Main.
func (c *Channel) Link(ctx context.Context) error {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	commonCaps := c.advertisedCommonCaps()

	c.setState(StateSendLinkHeader)
	mess := wire.LinkMess{
		ConnectionID: c.cfg.ConnectionID,
		ChannelType:  uint8(c.cfg.ChannelType),
		ChannelID:    c.cfg.ChannelID,
		CommonCaps:   commonCaps,
		ChannelCaps:  c.cfg.AdvertiseChannelCaps,
	}
	body := mess.Encode()
	header := wire.EncodeLinkHeader(wire.LinkHeader{
		Magic:   wire.LinkMagic,
		Major:   wire.ProtocolMajor,
		Minor:   wire.ProtocolMinor,
		MsgSize: uint32(len(body)),
	})
	if err := c.tr.WriteAll(ctx, header); err != nil {
		return c.fail(fmt.Errorf("channel: write link header: %w", err))
	}

	c.setState(StateSendLinkMessage)
	if err := c.tr.WriteAll(ctx, body); err != nil {
		return c.fail(fmt.Errorf("channel: write link message: %w", err))
	}

	c.setState(StateReadReplyHeader)
	replyHeaderBuf, err := c.tr.ReadExact(ctx, 16)
	if err != nil {
		return c.fail(fmt.Errorf("channel: read reply header: %w", err))
	}
	replyHeader, err := wire.DecodeLinkHeader(replyHeaderBuf)
	if err != nil {
		return c.fail(fmt.Errorf("channel: decode reply header: %w", err))
	}
	if replyHeader.Magic != wire.LinkMagic {
		return c.fail(&ProtocolError{Detail: "bad magic in link reply header"})
	}

	c.setState(StateReadReplyMessage)
	replyBuf, err := c.tr.ReadExact(ctx, int(replyHeader.MsgSize))
	if err != nil {
		return c.fail(fmt.Errorf("channel: read reply message: %w", err))
	}
	reply, err := wire.DecodeLinkReply(replyBuf)
	if err != nil {
		return c.fail(fmt.Errorf("channel: decode reply message: %w", err))
	}
	if reply.Error != 0 {
		return c.fail(&LinkError{Code: reply.Error})
	}

	c.effectiveCommonCaps = intersect(bitmask(commonCaps), bitmask(reply.CommonCaps))
	c.effectiveChannelCaps = intersectWords(c.cfg.AdvertiseChannelCaps, reply.ChannelCaps)
	c.miniHeader = c.HasCommonCap(wire.CapMiniHeader) && c.cfg.AdvertiseMiniHeader

	if c.cfg.Password != "" {
		if err := c.authenticate(ctx, reply); err != nil {
			return c.fail(err)
		}
	}

	c.setState(StateReady)
	return nil
}

func (c *Channel) advertisedCommonCaps() []uint32 {
	var bits uint32
	if c.cfg.AdvertiseAuthSelection {
		bits |= wire.CapAuthSelection
	}
	if c.cfg.AdvertiseMiniHeader {
		bits |= wire.CapMiniHeader
	}
	if bits == 0 {
		return nil
	}
	return []uint32{bits}
}

func (c *Channel) authenticate(ctx context.Context, reply wire.LinkReply) error {
	useSelection := c.HasCommonCap(wire.CapAuthSelection)

	if useSelection {
		c.setState(StateAuthSelect)
		sel := wire.NewWriter().U32(wire.AuthMethodSpice).Bytes()
		if err := c.tr.WriteAll(ctx, sel); err != nil {
			return fmt.Errorf("channel: write auth method: %w", err)
		}
	}

	c.setState(StateSendTicket)
	pub, err := auth.ParsePublicKey(reply.PubKey[:])
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	ct, err := auth.EncryptTicket(pub, c.cfg.Password)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if err := c.tr.WriteAll(ctx, ct); err != nil {
		return fmt.Errorf("channel: write ticket: %w", err)
	}

	c.setState(StateReadAuthReply)
	replyBuf, err := c.tr.ReadExact(ctx, 4)
	if err != nil {
		return fmt.Errorf("channel: read auth reply: %w", err)
	}
	r := wire.NewReader(replyBuf)
	code := r.U32()
	if code != 0 {
		return &AuthenticationFailed{Code: code}
	}
	return nil
}

func (c *Channel) fail(err error) error {
	c.setState(StateFailed)
	return err
}

func bitmask(words []uint32) uint32 {
	var bits uint32
	for _, w := range words {
		bits |= w
	}
	return bits
}

func intersect(a, b uint32) uint32 {
	return a & b
}

// intersectWords intersects two cap-word lists position by position (words
// beyond the shorter list's length are dropped, since neither side could
// have negotiated them).
func intersectWords(a, b []uint32) []uint32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] & b[i]
	}
	return out
}
