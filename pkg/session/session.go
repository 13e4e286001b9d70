// Package session implements the main-channel coordinator (§4.4): it drives
// the overall session, attaches sub-channels, parses the server's
// channels-list, and spawns a channel runtime per sub-channel.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quickemu-project/spice-go/pkg/channel"
	"github.com/quickemu-project/spice-go/pkg/config"
	"github.com/quickemu-project/spice-go/pkg/transport"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// SessionState is the user-visible state enum (§7).
type SessionState int

// States, in the order a healthy session visits them.
const (
	StateConnecting SessionState = iota
	StateAuthenticating
	StateReady
	StateDegraded
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateReady:
		return "Ready"
	case StateDegraded:
		return "Degraded"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Dialer opens a new transport to the server, for the given channel type.
// Session calls it once per channel (Main, then one per advertised
// sub-channel). The default implementation (NewDialer) dials TCP or
// WebSocket per cfg.Transport.
type Dialer func(ctx context.Context, ch wire.ChannelType) (transport.Transport, error)

// SubChannelHandler builds the channel.Handler for a newly-attached
// sub-channel and is invoked once per entry in MAIN_CHANNELS_LIST whose
// type this session knows how to consume. Implementations that don't care
// about a given channel type should return (nil, nil) to skip it.
type SubChannelHandlerFactory func(ch wire.ChannelType, id uint8) (channel.Handler, error)

// Session coordinates the Main channel and its sub-channels.
type Session struct {
	cfg     config.Config
	dial    Dialer
	factory SubChannelHandlerFactory
	logger  *slog.Logger

	onState func(SessionState)
	onAgent func(payload []byte)

	mu        sync.Mutex
	state     SessionState
	sessionID uint32
	main      *channel.Channel
	subs      map[wire.ChannelType]*channel.Channel
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// Options configures a Session beyond the basic Config.
type Options struct {
	Dialer            Dialer
	HandlerFactory    SubChannelHandlerFactory
	Logger            *slog.Logger
	OnStateChange     func(SessionState)
	OnAgentData       func(payload []byte)
}

// New constructs a Session. Call Run to connect and drive it.
func New(cfg config.Config, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dialer == nil {
		opts.Dialer = NewDialer(cfg)
	}
	return &Session{
		cfg:     cfg,
		dial:    opts.Dialer,
		factory: opts.HandlerFactory,
		logger:  opts.Logger,
		onState: opts.OnStateChange,
		onAgent: opts.OnAgentData,
		subs:    make(map[wire.ChannelType]*channel.Channel),
	}
}

// SessionID returns the 32-bit session id assigned by MAIN_INIT, valid
// once the session reaches StateReady.
func (s *Session) SessionID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Session) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(st)
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run links the Main channel, completes MAIN_INIT/MAIN_ATTACH_CHANNELS,
// dials and links every advertised sub-channel this session knows how to
// consume, and then drives all channels until ctx is cancelled or the Main
// channel fails. It blocks until the session is torn down.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.ctx = ctx
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.setState(StateConnecting)

	mainTr, err := s.dial(ctx, wire.ChannelMain)
	if err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("session: dial main channel: %w", err)
	}

	mainHandler := &mainChannelHandler{session: s}
	main := channel.New(mainTr, channel.Config{
		ChannelType:            wire.ChannelMain,
		ChannelID:              0,
		ConnectionID:           0,
		Password:               s.cfg.Password,
		AdvertiseMiniHeader:    s.cfg.AdvertiseMiniHeader,
		AdvertiseAuthSelection: s.cfg.AdvertiseAuthSelection,
		ConnectTimeout:         time.Duration(s.cfg.ConnectTimeoutMS) * time.Millisecond,
		Handler:                mainHandler,
		Logger:                 s.logger,
	})

	if s.cfg.Password != "" {
		s.setState(StateAuthenticating)
	}
	if err := main.Link(ctx); err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("session: link main channel: %w", err)
	}

	s.mu.Lock()
	s.main = main
	s.mu.Unlock()

	// MAIN_ATTACH_CHANNELS has no body.
	if err := main.Send(ctx, wire.MsgMainAttachChannels, nil); err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("session: send MAIN_ATTACH_CHANNELS: %w", err)
	}

	s.wg.Add(1)
	mainErrCh := make(chan error, 1)
	go func() {
		defer s.wg.Done()
		mainErrCh <- main.Run(ctx)
	}()

	// mainChannelHandler.HandleMessage populates sessionID and the channels
	// list, and calls attachSubChannels once MAIN_CHANNELS_LIST arrives; we
	// just need to wait for the session to finish (Main exits) or ctx done.
	select {
	case err := <-mainErrCh:
		cancel()
		s.wg.Wait()
		s.setState(StateClosed)
		return err
	case <-ctx.Done():
		s.wg.Wait()
		s.setState(StateClosed)
		return ctx.Err()
	}
}

// Close cancels the session, tearing down Main and every sub-channel. The
// Main coordinator's cancellation cascades to all sub-channels (§5).
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Channel returns the live sub-channel of the given type, if attached.
func (s *Session) Channel(t wire.ChannelType) (*channel.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.subs[t]
	return ch, ok
}

// attachSubChannels dials and links one channel.Channel per entry in list,
// concurrently; order among them is not observable (§4.4).
func (s *Session) attachSubChannels(ctx context.Context, list wire.ChannelsList) {
	for _, entry := range list.Entries {
		entry := entry
		if s.factory == nil {
			continue
		}
		handler, err := s.factory(entry.Type, entry.ID)
		if err != nil {
			s.logger.Error("sub-channel handler factory failed", "channel_type", entry.Type, "err", err)
			continue
		}
		if handler == nil {
			continue // this session doesn't consume this channel type
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.runSubChannel(ctx, entry, handler); err != nil {
				s.logger.Error("sub-channel failed", "channel_type", entry.Type, "channel_id", entry.ID, "err", err)
				s.setState(StateDegraded)
			}
		}()
	}
}

func (s *Session) runSubChannel(ctx context.Context, entry wire.ChannelsListEntry, handler channel.Handler) error {
	tr, err := s.dial(ctx, entry.Type)
	if err != nil {
		return fmt.Errorf("dial %s channel: %w", entry.Type, err)
	}

	ch := channel.New(tr, channel.Config{
		ChannelType:            entry.Type,
		ChannelID:              entry.ID,
		ConnectionID:           s.SessionID(),
		Password:               s.cfg.Password,
		AdvertiseMiniHeader:    s.cfg.AdvertiseMiniHeader,
		AdvertiseAuthSelection: s.cfg.AdvertiseAuthSelection,
		ConnectTimeout:         time.Duration(s.cfg.ConnectTimeoutMS) * time.Millisecond,
		Handler:                handler,
		Logger:                 s.logger,
	})

	if err := ch.Link(ctx); err != nil {
		return fmt.Errorf("link %s channel: %w", entry.Type, err)
	}

	s.mu.Lock()
	s.subs[entry.Type] = ch
	s.mu.Unlock()

	return ch.Run(ctx)
}
