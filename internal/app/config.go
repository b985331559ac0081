package app

import (
	"io"

	"github.com/mcpdesk/mcpdesk/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is the directory holding config.yaml and settings.yaml.
	// Empty means ~/.config/mcpdesk.
	ConfigPath string

	// LogLevel overrides the logLevel of config.yaml when set.
	LogLevel string

	// Version is reported to MCP servers during the handshake.
	Version string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Loaded configuration, set during bootstrap
	Desk *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Version:    version,
	}
}
