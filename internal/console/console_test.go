package console

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/bridge"
	"github.com/mcpdesk/mcpdesk/internal/mcpclient"
	"github.com/mcpdesk/mcpdesk/internal/process"
	"github.com/mcpdesk/mcpdesk/internal/profile"
	"github.com/mcpdesk/mcpdesk/internal/session"
	"github.com/mcpdesk/mcpdesk/internal/testing/mock"
)

type consoleFixture struct {
	repl     *REPL
	out      *bytes.Buffer
	store    *profile.Store
	sessions *session.Manager
	registry *process.Registry
}

func newConsole(t *testing.T) *consoleFixture {
	t.Helper()

	f := &consoleFixture{
		out:      &bytes.Buffer{},
		store:    profile.NewStoreWithPath(t.TempDir()),
		sessions: session.NewManager(&mcpclient.Factory{Identity: mcpclient.Identity{Name: "mcpdesk-test", Version: "0.0.0"}}, nil),
		registry: process.NewRegistry(nil),
	}
	t.Cleanup(func() {
		_ = f.sessions.Disconnect()
		f.registry.StopAll()
	})

	b := bridge.New(bridge.Config{
		Profiles:    f.store,
		Sessions:    f.sessions,
		Processes:   f.registry,
		SettleDelay: 200 * time.Millisecond,
	})
	f.repl = New(b, nil, Options{Out: f.out, HistoryFile: t.TempDir() + "/history"})
	return f
}

func (f *consoleFixture) run(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	require.NoError(t, f.repl.Execute(context.Background(), line))
	return f.out.String()
}

func TestExecute_UnknownCommand(t *testing.T) {
	f := newConsole(t)
	err := f.repl.Execute(context.Background(), "frobnicate now")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: frobnicate")
}

func TestExecute_EmptyLine(t *testing.T) {
	f := newConsole(t)
	assert.NoError(t, f.repl.Execute(context.Background(), "   "))
	assert.Empty(t, f.out.String())
}

func TestExecute_Exit(t *testing.T) {
	f := newConsole(t)
	for _, line := range []string{"exit", "quit", "q"} {
		err := f.repl.Execute(context.Background(), line)
		assert.True(t, errors.Is(err, errExit), line)
	}
}

func TestExecute_Help(t *testing.T) {
	f := newConsole(t)
	out := f.run(t, "?")
	for _, name := range []string{"connect <profile-id>", "invoke <service-id> [method] [json]", "ps"} {
		assert.Contains(t, out, name)
	}
}

func TestExecute_ProfileLifecycle(t *testing.T) {
	f := newConsole(t)

	assert.Contains(t, f.run(t, "profiles"), "No server profiles")

	assert.Contains(t, f.run(t, "add http Remote http://localhost:9000/sse"), "Added Remote")
	assert.Contains(t, f.run(t, "add package Demo npx demo-server --verbose"), "Added Demo")

	profiles, err := f.store.List()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, api.KindHTTP, profiles[0].Kind)
	assert.Equal(t, []string{"--verbose"}, profiles[1].Config.Args)

	out := f.run(t, "ls")
	assert.Contains(t, out, "Remote")
	assert.Contains(t, out, "npx demo-server --verbose")

	assert.Contains(t, f.run(t, "rm "+profiles[0].ID), "Removed")
	profiles, err = f.store.List()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	err = f.repl.Execute(context.Background(), "remove missing")
	assert.True(t, api.IsNotFound(err))
}

func TestExecute_AddErrors(t *testing.T) {
	f := newConsole(t)

	err := f.repl.Execute(context.Background(), "add http")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: add")

	err = f.repl.Execute(context.Background(), "add grpc Name target")
	assert.True(t, api.IsUnsupportedKind(err))

	err = f.repl.Execute(context.Background(), "add http Bad http://x sse extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: add")
}

func TestExecute_ThemeAndLanguage(t *testing.T) {
	f := newConsole(t)

	assert.Contains(t, f.run(t, "theme"), "light")
	assert.Contains(t, f.run(t, "theme dark"), "Theme set to dark")
	assert.Contains(t, f.run(t, "theme"), "dark")

	assert.Contains(t, f.run(t, "lang zh"), "Language set to zh")
	assert.Contains(t, f.run(t, "language"), "zh")

	assert.Error(t, f.repl.Execute(context.Background(), "theme purple"))
}

func TestExecute_InvokeWhileDisconnected(t *testing.T) {
	f := newConsole(t)

	out := f.run(t, `invoke echo {"message":"hi"}`)
	assert.Contains(t, out, "-32000")
	assert.Contains(t, out, "Not connected to MCP server")

	err := f.repl.Execute(context.Background(), "services")
	assert.True(t, api.IsNotConnected(err))

	assert.Contains(t, f.run(t, "status"), "disconnected")
}

func TestExecute_SessionAgainstFixture(t *testing.T) {
	fixture := mock.NewFixture()
	ts, url := fixture.ServeStreamableHTTP()
	defer ts.Close()

	f := newConsole(t)
	stored, err := f.store.Add(api.ServerProfile{
		ID:     "fixture",
		Name:   "Fixture",
		Kind:   api.KindHTTP,
		Config: api.ServerConfig{BaseURL: url, Transport: api.TransportStreamableHTTP},
	})
	require.NoError(t, err)

	assert.Contains(t, f.run(t, "connect "+stored.ID), "Connected to fixture")
	assert.Contains(t, f.run(t, "status"), "connected to fixture")
	assert.Contains(t, f.repl.prompt(), "fixture")

	out := f.run(t, "services")
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "math")

	assert.Contains(t, f.run(t, "describe math"), "add")

	assert.Contains(t, f.run(t, `invoke echo {"message": "hello there"}`), "hello there")
	assert.Contains(t, f.run(t, `call math add {"a": 2, "b": 3}`), "5")

	out = f.run(t, "invoke fail")
	assert.Contains(t, out, "fixture failure")
	assert.Contains(t, out, "-32603")

	err = f.repl.Execute(context.Background(), "invoke echo {not json")
	assert.True(t, api.IsInvalidPayload(err))

	assert.Contains(t, f.run(t, "disconnect"), "Disconnected")
	assert.Equal(t, api.StateDisconnected, f.sessions.State())
	assert.Equal(t, "mcpdesk > ", f.repl.prompt())
}

func TestExecute_ConnectFailure(t *testing.T) {
	f := newConsole(t)
	_, err := f.store.Add(api.ServerProfile{ID: "broken", Name: "Broken", Kind: api.KindCommand})
	require.NoError(t, err)

	err = f.repl.Execute(context.Background(), "connect broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.Equal(t, api.StateDisconnected, f.sessions.State())
}

func TestExecute_StartAndStop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	f := newConsole(t)

	out := f.run(t, "start echo started-from-console")
	assert.Contains(t, out, "Started")
	assert.Contains(t, out, "started-from-console")

	out = f.run(t, "start sleep 30")
	assert.Contains(t, out, "Started")
	// the echo process may still be draining its pipes
	require.Eventually(t, func() bool { return len(f.registry.List()) == 1 }, 5*time.Second, 20*time.Millisecond)
	procs := f.registry.List()
	assert.Contains(t, f.run(t, "ps"), "sleep 30")

	assert.Contains(t, f.run(t, "stop "+procs[0].ID), "Stopped")
	assert.Empty(t, f.registry.List())

	err := f.repl.Execute(context.Background(), "stop "+procs[0].ID)
	require.Error(t, err)
	assert.Equal(t, bridge.ServerNotFound, err.Error())
}

func TestExecute_StartProfile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	f := newConsole(t)
	_, err := f.store.Add(api.ServerProfile{
		ID:     "greeter",
		Name:   "Greeter",
		Kind:   api.KindCommand,
		Config: api.ServerConfig{Command: "echo greeting-from-profile"},
	})
	require.NoError(t, err)
	_, err = f.store.Add(api.ServerProfile{
		ID:     "remote",
		Name:   "Remote",
		Kind:   api.KindHTTP,
		Config: api.ServerConfig{BaseURL: "http://localhost:1"},
	})
	require.NoError(t, err)

	assert.Contains(t, f.run(t, "start greeter"), "greeting-from-profile")

	_, err = f.store.Add(api.ServerProfile{
		ID:     "printenv",
		Name:   "Printenv",
		Kind:   api.KindCommand,
		Config: api.ServerConfig{Command: "printenv MCPDESK_PROFILE_VAR", Env: map[string]string{"MCPDESK_PROFILE_VAR": "from-profile"}},
	})
	require.NoError(t, err)
	assert.Contains(t, f.run(t, "start printenv"), "from-profile")

	err = f.repl.Execute(context.Background(), "start remote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no process to start")
}

func TestSplitInvoke(t *testing.T) {
	tests := []struct {
		raw     string
		id      string
		method  string
		payload string
		ok      bool
	}{
		{raw: "echo", id: "echo", ok: true},
		{raw: "math add", id: "math", method: "add", ok: true},
		{raw: `echo {"message": "a b"}`, id: "echo", payload: `{"message": "a b"}`, ok: true},
		{raw: `math add {"a":1}`, id: "math", method: "add", payload: `{"a":1}`, ok: true},
		{raw: "", ok: false},
		{raw: "a b c", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, method, payload, ok := splitInvoke(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.method, method)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestParseProfile(t *testing.T) {
	p, err := parseProfile([]string{"http", "Remote", "http://host/mcp", "streamable-http"})
	require.NoError(t, err)
	assert.Equal(t, api.TransportStreamableHTTP, p.Config.Transport)

	p, err = parseProfile([]string{"command", "Local", "node", "server.js", "--port", "1"})
	require.NoError(t, err)
	assert.Equal(t, "node server.js --port 1", p.Config.Command)

	_, err = parseProfile([]string{"package", "Pkg", "npx"})
	assert.ErrorIs(t, err, errBadUsage)
}
