package config

import "time"

const (
	DefaultLogLevel      = "info"
	DefaultClientName    = "mcpdesk"
	DefaultInitTimeout   = 10 * time.Second
	DefaultSettleDelay   = time.Second
	DefaultEventBuffer   = 256
	DefaultListenAddress = "127.0.0.1:7410"
	// DefaultAllowedOrigin is the development server of the web front end.
	DefaultAllowedOrigin = "http://localhost:5173"
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Client: ClientConfig{
			Name:        DefaultClientName,
			InitTimeout: DefaultInitTimeout,
		},
		Process: ProcessConfig{
			SettleDelay: DefaultSettleDelay,
			EventBuffer: DefaultEventBuffer,
		},
		Server: ServerConfig{
			Listen:         DefaultListenAddress,
			AllowedOrigins: []string{DefaultAllowedOrigin},
		},
	}
}
