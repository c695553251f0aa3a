package subagent

import "log/slog"

// DefaultEndpoint is the public verifiable Twitter subagent.
const DefaultEndpoint = "https://subagent.1rpc.io"

// ClientConfig holds all configuration for the subagent client.
type ClientConfig struct {
	// Credentials are forwarded to the subagent with every post.
	Credentials Credentials

	// Endpoint is an http(s):// URL or a Unix socket path.
	// Default: DefaultEndpoint
	Endpoint string

	// Path is the request path on the endpoint. Default: "/"
	Path string

	// Sender overrides the transport. Default: NewTransport(Logger)
	Sender Sender

	// Logger receives client logs. Default: slog.Default()
	Logger *slog.Logger
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sender == nil {
		cfg.Sender = NewTransport(cfg.Logger)
	}
}
