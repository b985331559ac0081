package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/config"
)

func newTestApplication(t *testing.T, configYAML string) *Application {
	t.Helper()
	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(configYAML), 0644))
	}
	cfg := NewConfig(dir, "", "1.2.3")
	cfg.LogOutput = &bytes.Buffer{}

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)
	return application
}

func TestNewApplication_Defaults(t *testing.T) {
	application := newTestApplication(t, "")

	desk := application.config.Desk
	require.NotNil(t, desk)
	assert.Equal(t, config.DefaultClientName, desk.Client.Name)
	assert.Equal(t, config.DefaultSettleDelay, desk.Process.SettleDelay)

	s := application.Services()
	assert.Equal(t, api.StateDisconnected, s.Sessions.State())
	assert.Equal(t, filepath.Join(application.config.ConfigPath, "settings.yaml"), s.Profiles.Path())
}

func TestNewApplication_LogLevelOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("logLevel: warn\n"), 0644))

	cfg := NewConfig(dir, "debug", "")
	cfg.LogOutput = &bytes.Buffer{}
	application, err := NewApplication(cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, "debug", application.config.Desk.LogLevel)
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("client:\n  initTimeout: -1s\n"), 0644))

	cfg := NewConfig(dir, "", "")
	cfg.LogOutput = &bytes.Buffer{}
	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestNewApplication_InvalidLogLevel(t *testing.T) {
	cfg := NewConfig(t.TempDir(), "chatty", "")
	cfg.LogOutput = &bytes.Buffer{}
	_, err := NewApplication(cfg)
	assert.Error(t, err)
}

func TestServices_CloseIsIdempotent(t *testing.T) {
	application := newTestApplication(t, "")
	application.Close()
	application.Close()
}

func TestServeListener_WindowCloseShutsDown(t *testing.T) {
	application := newTestApplication(t, "process:\n  settleDelay: 0s\n")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + listener.Addr().String()

	done := make(chan error, 1)
	go func() {
		done <- application.ServeListener(context.Background(), listener)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/get-theme", "application/json", strings.NewReader("[]"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/api/window-close", "application/json", strings.NewReader("[]"))
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after window close")
	}
}

func TestServeListener_ContextCancel(t *testing.T) {
	application := newTestApplication(t, "")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.ServeListener(ctx, listener)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestLogLifecycle_StopsOnClosedChannel(t *testing.T) {
	events := make(chan api.Event, 2)
	code := 3
	events <- api.Event{Type: api.EventServerExit, ID: "p1", Code: &code}
	events <- api.Event{Type: api.EventSessionState, ID: "s1", State: api.StateConnected}
	close(events)

	finished := make(chan struct{})
	go func() {
		logLifecycle(context.Background(), events)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("logLifecycle did not return")
	}
}
