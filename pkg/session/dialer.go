package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quickemu-project/spice-go/pkg/config"
	"github.com/quickemu-project/spice-go/pkg/transport"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// NewDialer builds the default Dialer for cfg: one TCP or WebSocket dial
// per channel, to the same server endpoint (§4.4), honoring
// cfg.ConnectTimeoutMS and, for WebSocket, cfg.WSPathPerChannel.
func NewDialer(cfg config.Config) Dialer {
	return func(ctx context.Context, ch wire.ChannelType) (transport.Transport, error) {
		timeout := time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		switch cfg.Transport {
		case config.TransportWebSocket:
			path := cfg.WSPathPerChannel[uint8(ch)]
			url := fmt.Sprintf("ws://%s:%d%s", cfg.Host, cfg.Port, path)
			return transport.DialWebSocket(ctx, transport.DialWebSocketConfig{
				URL:              url,
				HandshakeTimeout: timeout,
				Header:           http.Header{},
			})
		case config.TransportTCP, "":
			addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			return transport.DialTCP(ctx, addr)
		default:
			return nil, fmt.Errorf("session: unrecognized transport %q", cfg.Transport)
		}
	}
}
