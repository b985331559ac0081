package app

import (
	"fmt"
	"os"

	"github.com/mcpdesk/mcpdesk/internal/config"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// Application holds the bootstrapped services of one mcpdesk run.
//
// Initialization happens in two phases:
//  1. Bootstrap: load configuration, initialize logging, build services
//  2. Execution: Serve or Console
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration from cfg.ConfigPath (or the default
// directory), configures logging and initializes all services.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.ConfigPath == "" {
		dir, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfg.ConfigPath = dir
	}

	logOutput := cfg.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}

	// Log at the requested level while loading so config problems are visible.
	bootLevel, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.InitForCLI(bootLevel, logOutput)

	deskCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}
	if cfg.LogLevel != "" {
		deskCfg.LogLevel = cfg.LogLevel
	}
	cfg.Desk = &deskCfg

	level, err := logging.ParseLevel(deskCfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.InitForCLI(level, logOutput)
	logging.Debug("Bootstrap", "Loaded configuration from %s", cfg.ConfigPath)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Close kills spawned processes, closes the session and the event bus.
func (a *Application) Close() {
	a.services.Close()
}
