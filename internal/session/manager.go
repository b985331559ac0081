package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/internal/mcpclient"
	"github.com/mcpdesk/mcpdesk/internal/transport"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// ClientFactory builds an unopened client for a transport descriptor.
type ClientFactory interface {
	New(d transport.Descriptor) (mcpclient.Client, error)
}

type session struct {
	profileID string
	client    mcpclient.Client
}

// Manager owns the active session.
type Manager struct {
	factory   ClientFactory
	publisher events.Publisher

	// connectMu serializes Connect and Disconnect.
	connectMu sync.Mutex

	mu      sync.RWMutex
	state   api.ConnectionState
	current *session

	discovery singleflight.Group
}

// NewManager creates a disconnected manager.
func NewManager(factory ClientFactory, publisher events.Publisher) *Manager {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Manager{
		factory:   factory,
		publisher: publisher,
		state:     api.StateDisconnected,
	}
}

// Connect replaces any existing session with one opened against profile.
// On failure the manager ends up disconnected and the selector's typed error
// or an *api.ConnectFailedError is returned.
func (m *Manager) Connect(ctx context.Context, profile api.ServerProfile) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.teardown()
	m.setState(profile.ID, api.StateConnecting, nil, nil)

	descriptor, err := transport.Select(profile)
	if err != nil {
		m.setState(profile.ID, api.StateDisconnected, nil, err)
		return err
	}

	logging.Info("SessionManager", "Connecting to %s via %s", profile.ID, descriptor)

	client, err := m.factory.New(descriptor)
	if err != nil {
		err = &api.ConnectFailedError{ProfileID: profile.ID, Err: err}
		m.setState(profile.ID, api.StateDisconnected, nil, err)
		return err
	}

	if err := client.Initialize(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.Debug("SessionManager", "Closing failed client for %s: %v", profile.ID, closeErr)
		}
		err = &api.ConnectFailedError{ProfileID: profile.ID, Err: err}
		logging.Error("SessionManager", err, "Failed to connect to %s", profile.ID)
		m.setState(profile.ID, api.StateDisconnected, nil, err)
		return err
	}

	m.setState(profile.ID, api.StateConnected, &session{profileID: profile.ID, client: client}, nil)
	logging.Info("SessionManager", "Connected to %s", profile.ID)
	return nil
}

// Disconnect closes the active session. It succeeds when there is none.
func (m *Manager) Disconnect() error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.teardown()
	return nil
}

// teardown closes the current session, logging close errors.
// Caller must hold connectMu.
func (m *Manager) teardown() {
	m.mu.RLock()
	s := m.current
	m.mu.RUnlock()
	if s == nil {
		return
	}

	m.setState(s.profileID, api.StateDisconnected, nil, nil)
	if err := s.client.Close(); err != nil {
		logging.Warn("SessionManager", "Error closing session %s: %v", s.profileID, err)
	}
	logging.Info("SessionManager", "Disconnected from %s", s.profileID)
}

func (m *Manager) setState(profileID string, state api.ConnectionState, s *session, cause error) {
	m.mu.Lock()
	m.state = state
	m.current = s
	m.mu.Unlock()

	event := api.Event{Type: api.EventSessionState, ID: profileID, State: state}
	if cause != nil {
		event.Error = cause.Error()
	}
	m.publisher.Publish(event)
}

// State returns the current connection state.
func (m *Manager) State() api.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Active returns the profile id of the bound session, if any.
func (m *Manager) Active() (string, bool) {
	s := m.active()
	if s == nil {
		return "", false
	}
	return s.profileID, true
}

func (m *Manager) active() *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Ping checks that the bound server still answers.
func (m *Manager) Ping(ctx context.Context) error {
	s := m.active()
	if s == nil {
		return api.ErrNotConnected
	}
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.profileID, err)
	}
	return nil
}
