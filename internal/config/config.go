package config

import (
	"os"
	"strings"
)

// Default configuration values.
const (
	DefaultServerURL = "ws://localhost:3000/ws"
)

// DefaultSTUNServers mirror the negotiation defaults: the five public
// Google STUN servers.
var DefaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
	"stun:stun3.l.google.com:19302",
	"stun:stun4.l.google.com:19302",
}

// Config holds client configuration.
type Config struct {
	// ServerURL is the relay's websocket endpoint.
	ServerURL string

	// STUNServers used for call negotiation.
	STUNServers []string
}

// Options carries CLI flag overrides into Load.
type Options struct {
	ServerURL string
	STUN      string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options)
// 2. Environment variables
// 3. Defaults
func Load(opts Options) (*Config, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("PARLEY_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	stun := opts.STUN
	if stun == "" {
		stun = os.Getenv("PARLEY_STUN_SERVERS")
	}

	stunServers := DefaultSTUNServers
	if stun != "" {
		stunServers = splitList(stun)
	}

	return &Config{
		ServerURL:   serverURL,
		STUNServers: stunServers,
	}, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
