// Package config holds the client-facing configuration surface (§6
// "Configuration"), loadable either from the environment (for CLI/service
// embedders, the same two-library combination the teacher's
// LoadCliConfig uses) or as a plain struct literal (for GUI embedders that
// already have their own settings store).
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// TransportKind selects the realization of transport.Transport a Config
// dials.
type TransportKind string

// Recognized transport kinds.
const (
	TransportTCP       TransportKind = "tcp"
	TransportWebSocket TransportKind = "websocket"
)

// Config is the recognized option set from spec.md §6.
type Config struct {
	Host     string        `envconfig:"SPICE_HOST" required:"true"`
	Port     uint16        `envconfig:"SPICE_PORT" default:"5900"`
	Password string        `envconfig:"SPICE_PASSWORD"` // empty = no auth
	Transport TransportKind `envconfig:"SPICE_TRANSPORT" default:"tcp"`

	// WSPathPerChannel maps a wire.ChannelType (by its numeric value, e.g.
	// 2 for display) to the URL path used when dialing that channel over
	// WebSocket. Populated by the embedder; envconfig cannot express a map
	// well enough to be useful here so this field is only ever set in code.
	WSPathPerChannel map[uint8]string `ignored:"true"`

	AdvertiseMiniHeader    bool   `envconfig:"SPICE_ADVERTISE_MINI_HEADER" default:"true"`
	AdvertiseAuthSelection bool   `envconfig:"SPICE_ADVERTISE_AUTH_SELECTION" default:"true"`
	ConnectTimeoutMS       uint32 `envconfig:"SPICE_CONNECT_TIMEOUT_MS" default:"10000"`
}

// Load reads Config from the environment, first loading a local .env file
// if present (ignored if absent), mirroring LoadCliConfig's
// `_ = godotenv.Load()` then `envconfig.Process` sequence.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks for option combinations that are never legal.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: host is required")
	}
	switch c.Transport {
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("config: unrecognized transport %q", c.Transport)
	}
	return nil
}
