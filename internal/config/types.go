package config

import "time"

// Config is the top-level configuration structure for mcpdesk.
type Config struct {
	LogLevel string        `yaml:"logLevel,omitempty"`
	Client   ClientConfig  `yaml:"client,omitempty"`
	Process  ProcessConfig `yaml:"process,omitempty"`
	Server   ServerConfig  `yaml:"server,omitempty"`
}

// ClientConfig controls the MCP client side of a session.
type ClientConfig struct {
	Name        string        `yaml:"name,omitempty"`        // Client name sent during the handshake
	InitTimeout time.Duration `yaml:"initTimeout,omitempty"` // Bound on transport start plus handshake
}

// ProcessConfig controls spawned server processes.
type ProcessConfig struct {
	// SettleDelay is how long start requests wait before returning the output collected so far.
	SettleDelay time.Duration `yaml:"settleDelay,omitempty"`
	// EventBuffer is the per-subscriber event channel capacity.
	EventBuffer int `yaml:"eventBuffer,omitempty"`
}

// ServerConfig controls the local HTTP control surface.
type ServerConfig struct {
	Listen         string   `yaml:"listen,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}
