// spice-client is a minimal standalone SPICE client: it connects to a
// server using pkg/config's environment-driven Config, drives a
// pkg/session.Session, and logs decoded display/cursor events through a
// sink.Sink instead of rendering them anywhere: surface create/destroy at
// Info, frame and cursor updates at Debug, which the Info-level logger set
// up in main does not print. It exists to
// exercise the full stack end to end, the same role the teacher's
// desktop-bridge entrypoint plays for the desktop package.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/quickemu-project/spice-go/pkg/channel"
	"github.com/quickemu-project/spice-go/pkg/config"
	"github.com/quickemu-project/spice-go/pkg/cursor"
	"github.com/quickemu-project/spice-go/pkg/display"
	"github.com/quickemu-project/spice-go/pkg/session"
	"github.com/quickemu-project/spice-go/pkg/sink"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// loggingSink wraps a logger and satisfies sink.Sink by recording every
// event it receives, standing in for a real renderer.
type loggingSink struct {
	logger *slog.Logger
}

func (s *loggingSink) SurfaceCreated(id uint32, width, height int, format uint8) {
	s.logger.Info("surface created", "id", id, "width", width, "height", height, "format", format)
}

func (s *loggingSink) SurfaceDestroyed(id uint32) {
	s.logger.Info("surface destroyed", "id", id)
}

func (s *loggingSink) FrameUpdate(id uint32, rect wire.Rect, pixels []byte, stride int) {
	s.logger.Debug("frame update", "surface_id", id, "rect", rect, "bytes", len(pixels), "stride", stride)
}

func (s *loggingSink) CursorShape(shape sink.CursorShape) {
	s.logger.Debug("cursor shape", "width", shape.Width, "height", shape.Height, "hot_x", shape.HotX, "hot_y", shape.HotY)
}

func (s *loggingSink) CursorPosition(x, y int16) {
	s.logger.Debug("cursor position", "x", x, "y", y)
}

func (s *loggingSink) CursorHidden() {
	s.logger.Debug("cursor hidden")
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("starting spice-client")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	snk := &loggingSink{logger: logger}

	factory := func(ch wire.ChannelType, id uint8) (channel.Handler, error) {
		switch ch {
		case wire.ChannelDisplay:
			return display.NewHandler(snk, logger)
		case wire.ChannelCursor:
			return cursor.NewHandler(snk, logger), nil
		default:
			return nil, nil
		}
	}

	sess := session.New(cfg, session.Options{
		Logger:         logger,
		HandlerFactory: factory,
		OnStateChange: func(st session.SessionState) {
			logger.Info("session state changed", "state", st.String())
		},
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("session run error", "err", err)
		}
	}()

	wg.Wait()
	logger.Info("spice-client shutdown complete")
}
