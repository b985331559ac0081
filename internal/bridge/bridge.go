package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/transport"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// ProfileStore is the persistence the bridge needs.
type ProfileStore interface {
	List() ([]api.ServerProfile, error)
	Get(id string) (api.ServerProfile, error)
	Add(p api.ServerProfile) (api.ServerProfile, error)
	Remove(id string) error
	Theme() (api.Theme, error)
	SetTheme(theme api.Theme) error
	Language() (api.Language, error)
	SetLanguage(lang api.Language) error
}

// Sessions is the session manager surface the bridge forwards to.
type Sessions interface {
	Connect(ctx context.Context, profile api.ServerProfile) error
	Disconnect() error
	State() api.ConnectionState
	Active() (string, bool)
	ListServices(ctx context.Context) ([]api.Service, error)
	DescribeService(ctx context.Context, id string) (*api.ServiceDetail, error)
	InvokeService(ctx context.Context, id, method string, params map[string]any) api.ServiceResponse
	Ping(ctx context.Context) error
}

// Processes is the process registry surface used by the start/stop channels.
type Processes interface {
	SpawnAndCollect(ctx context.Context, argv []string, env map[string]string, settle time.Duration) (string, string, error)
	Stop(id string) error
	List() []api.ProcessInfo
}

// StartResult is returned by start-cmd-server and start-pkg-server.
type StartResult struct {
	ID     string `json:"id"`
	Output string `json:"output"`
}

// StopResult is returned by stop-cmd-server and stop-pkg-server.
type StopResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatusResult is returned by connect and disconnect.
type StatusResult struct {
	State     api.ConnectionState `json:"state"`
	ProfileID string              `json:"profileId,omitempty"`
}

// ServerNotFound is the stop error for unknown process ids.
const ServerNotFound = "server not found"

// Config wires a Bridge.
type Config struct {
	Profiles    ProfileStore
	Sessions    Sessions
	Processes   Processes
	Window      Window
	// SettleDelay is how long start requests wait for early output.
	SettleDelay time.Duration
}

// Bridge exposes the allow-listed operations.
type Bridge struct {
	profiles  ProfileStore
	sessions  Sessions
	processes Processes
	window    Window
	settle    time.Duration
	channels  map[string]handler
}

// New creates a Bridge. A nil Window gets a headless one without a close hook.
func New(cfg Config) *Bridge {
	if cfg.Window == nil {
		cfg.Window = NewHeadlessWindow(nil)
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	b := &Bridge{
		profiles:  cfg.Profiles,
		sessions:  cfg.Sessions,
		processes: cfg.Processes,
		window:    cfg.Window,
		settle:    cfg.SettleDelay,
	}
	b.channels = b.registerChannels()
	return b
}

// GetServerConfigs returns all stored profiles.
func (b *Bridge) GetServerConfigs() ([]api.ServerProfile, error) {
	return b.profiles.List()
}

// GetServerConfig returns one stored profile.
func (b *Bridge) GetServerConfig(id string) (api.ServerProfile, error) {
	return b.profiles.Get(id)
}

// SaveServerConfig appends a profile and returns the updated list.
func (b *Bridge) SaveServerConfig(p api.ServerProfile) ([]api.ServerProfile, error) {
	if _, err := b.profiles.Add(p); err != nil {
		return nil, err
	}
	return b.profiles.List()
}

// RemoveServerConfig deletes a profile and returns the updated list.
func (b *Bridge) RemoveServerConfig(id string) ([]api.ServerProfile, error) {
	if err := b.profiles.Remove(id); err != nil {
		return nil, err
	}
	return b.profiles.List()
}

// GetTheme returns the persisted theme.
func (b *Bridge) GetTheme() (api.Theme, error) {
	return b.profiles.Theme()
}

// SetTheme persists and echoes the theme.
func (b *Bridge) SetTheme(theme api.Theme) (api.Theme, error) {
	if err := b.profiles.SetTheme(theme); err != nil {
		return "", err
	}
	return theme, nil
}

// GetLanguage returns the persisted UI language.
func (b *Bridge) GetLanguage() (api.Language, error) {
	return b.profiles.Language()
}

// SetLanguage persists and echoes the language.
func (b *Bridge) SetLanguage(lang api.Language) (api.Language, error) {
	if err := b.profiles.SetLanguage(lang); err != nil {
		return "", err
	}
	return lang, nil
}

// WindowMinimize, WindowMaximize and WindowClose forward to the window controller.
func (b *Bridge) WindowMinimize() { b.window.Minimize() }
func (b *Bridge) WindowMaximize() { b.window.ToggleMaximize() }
func (b *Bridge) WindowClose()    { b.window.Close() }

// StartCmdServer launches command (split on whitespace) followed by args.
func (b *Bridge) StartCmdServer(ctx context.Context, command string, args []string) (StartResult, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return StartResult{}, &api.MissingParameterError{Kind: api.KindCommand, Parameter: "command"}
	}
	return b.start(ctx, append(fields, args...), nil)
}

// StartPkgServer launches packageName through a package manager.
func (b *Bridge) StartPkgServer(ctx context.Context, manager api.PackageManager, packageName string, args []string) (StartResult, error) {
	argv, err := transport.PackageArgv(manager, packageName, args)
	if err != nil {
		return StartResult{}, err
	}
	return b.start(ctx, argv, nil)
}

// StartProfile launches the process of a stored command or package profile
// with the same argv and environment a connect would use.
func (b *Bridge) StartProfile(ctx context.Context, profileID string) (StartResult, error) {
	p, err := b.profiles.Get(profileID)
	if err != nil {
		return StartResult{}, err
	}
	if p.Kind == api.KindHTTP {
		return StartResult{}, fmt.Errorf("profile %s (%s) has no process to start", p.ID, p.Kind)
	}
	desc, err := transport.Select(p)
	if err != nil {
		return StartResult{}, err
	}
	return b.start(ctx, desc.Process.Argv, desc.Process.Env)
}

func (b *Bridge) start(ctx context.Context, argv []string, env map[string]string) (StartResult, error) {
	id, output, err := b.processes.SpawnAndCollect(ctx, argv, env, b.settle)
	if err != nil {
		logging.Error("Bridge", err, "Failed to start %s", strings.Join(argv, " "))
		return StartResult{}, err
	}
	return StartResult{ID: id, Output: output}, nil
}

// StopCmdServer stops a process started by StartCmdServer.
func (b *Bridge) StopCmdServer(id string) StopResult {
	return b.stop(id)
}

// StopPkgServer stops a process started by StartPkgServer.
func (b *Bridge) StopPkgServer(id string) StopResult {
	return b.stop(id)
}

func (b *Bridge) stop(id string) StopResult {
	if err := b.processes.Stop(id); err != nil {
		if api.IsNotFound(err) {
			return StopResult{Success: false, Error: ServerNotFound}
		}
		return StopResult{Success: false, Error: err.Error()}
	}
	return StopResult{Success: true}
}

// ListProcesses returns the running child processes.
func (b *Bridge) ListProcesses() []api.ProcessInfo {
	return b.processes.List()
}

// Connect opens a session to the stored profile with the given id.
func (b *Bridge) Connect(ctx context.Context, profileID string) (StatusResult, error) {
	p, err := b.profiles.Get(profileID)
	if err != nil {
		return StatusResult{}, err
	}
	if err := b.sessions.Connect(ctx, p); err != nil {
		return StatusResult{State: b.sessions.State()}, err
	}
	return b.Status(), nil
}

// Disconnect closes the active session.
func (b *Bridge) Disconnect() (StatusResult, error) {
	if err := b.sessions.Disconnect(); err != nil {
		return StatusResult{}, err
	}
	return b.Status(), nil
}

// Status reports the session state.
func (b *Bridge) Status() StatusResult {
	id, _ := b.sessions.Active()
	return StatusResult{State: b.sessions.State(), ProfileID: id}
}

// Ping checks that the connected server still answers.
func (b *Bridge) Ping(ctx context.Context) error {
	return b.sessions.Ping(ctx)
}

// ListServices returns the tools of the connected server.
func (b *Bridge) ListServices(ctx context.Context) ([]api.Service, error) {
	return b.sessions.ListServices(ctx)
}

// DescribeService returns one tool with its parameters.
func (b *Bridge) DescribeService(ctx context.Context, id string) (*api.ServiceDetail, error) {
	return b.sessions.DescribeService(ctx, id)
}

// InvokeService forwards an invocation. Failures are in the response.
func (b *Bridge) InvokeService(ctx context.Context, id, method string, params map[string]any) api.ServiceResponse {
	return b.sessions.InvokeService(ctx, id, method, params)
}

// UnknownChannelError is returned by Invoke for names outside the allow-list.
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return "unknown channel \"" + e.Channel + "\""
}

// IsUnknownChannel reports whether err is an UnknownChannelError.
func IsUnknownChannel(err error) bool {
	var target *UnknownChannelError
	return errors.As(err, &target)
}
