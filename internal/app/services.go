package app

import (
	"sync"

	"github.com/mcpdesk/mcpdesk/internal/bridge"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/internal/mcpclient"
	"github.com/mcpdesk/mcpdesk/internal/process"
	"github.com/mcpdesk/mcpdesk/internal/profile"
	"github.com/mcpdesk/mcpdesk/internal/session"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// Services holds all initialized components of the application.
//
// Components are created in dependency order:
//  1. Event bus (shared by every producer)
//  2. Process registry and profile store
//  3. Client factory and session manager
//  4. Bridge, with a headless window whose close ends the run
type Services struct {
	Bus       *events.Bus
	Processes *process.Registry
	Profiles  *profile.Store
	Sessions  *session.Manager
	Bridge    *bridge.Bridge
	Window    *bridge.HeadlessWindow

	// closed is closed when the window is closed through the bridge.
	closed    chan struct{}
	closeOnce sync.Once
}

// InitializeServices creates the components described by cfg.Desk.
func InitializeServices(cfg *Config) (*Services, error) {
	desk := cfg.Desk

	s := &Services{
		Bus:      events.NewBus(desk.Process.EventBuffer),
		Profiles: profile.NewStoreWithPath(cfg.ConfigPath),
		closed:   make(chan struct{}),
	}
	s.Processes = process.NewRegistry(s.Bus)

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	factory := &mcpclient.Factory{
		Identity:    mcpclient.Identity{Name: desk.Client.Name, Version: version},
		InitTimeout: desk.Client.InitTimeout,
		Publisher:   s.Bus,
	}
	s.Sessions = session.NewManager(factory, s.Bus)

	s.Window = bridge.NewHeadlessWindow(func() {
		logging.Info("App", "Window closed, shutting down")
		close(s.closed)
	})
	s.Bridge = bridge.New(bridge.Config{
		Profiles:    s.Profiles,
		Sessions:    s.Sessions,
		Processes:   s.Processes,
		Window:      s.Window,
		SettleDelay: desk.Process.SettleDelay,
	})

	logging.Debug("App", "Services initialized (settings: %s)", s.Profiles.Path())
	return s, nil
}

// Closed is closed once the window has been closed.
func (s *Services) Closed() <-chan struct{} {
	return s.closed
}

// Close tears everything down. It is safe to call more than once.
func (s *Services) Close() {
	s.closeOnce.Do(func() {
		if err := s.Sessions.Disconnect(); err != nil {
			logging.Warn("App", "Failed to close session: %v", err)
		}
		s.Processes.StopAll()
		s.Bus.Close()
	})
}
