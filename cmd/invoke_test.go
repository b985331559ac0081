package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/testing/mock"
)

// fixtureProfile starts the fixture server and stores a profile for it.
func fixtureProfile(t *testing.T) (dir string, fixture *mock.Fixture) {
	t.Helper()
	fixture = mock.NewFixture()
	ts, url := fixture.ServeStreamableHTTP()
	t.Cleanup(ts.Close)

	dir = t.TempDir()
	_, err := runCommand(t, "profiles", "add", "--config-path", dir,
		"--id", "fixture", "--name", "Fixture", "--type", "http",
		"--base-url", url, "--transport", "streamable-http")
	require.NoError(t, err)
	return dir, fixture
}

func TestServicesCommand(t *testing.T) {
	dir, _ := fixtureProfile(t)

	out, err := runCommand(t, "services", "--config-path", dir, "--log-level", "error", "fixture", "-o", "json")
	require.NoError(t, err)

	var services []api.Service
	require.NoError(t, json.Unmarshal([]byte(out), &services))
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "echo")
	assert.Contains(t, ids, "math.add")

	out, err = runCommand(t, "services", "--config-path", dir, "--log-level", "error", "fixture", "math")
	require.NoError(t, err)
	assert.Contains(t, out, "add")
}

func TestInvokeCommand(t *testing.T) {
	dir, fixture := fixtureProfile(t)

	out, err := runCommand(t, "invoke", "--config-path", dir, "--log-level", "error",
		"fixture", "math", "--method", "add", `{"a": 2, "b": 3}`, "-o", "json")
	require.NoError(t, err)

	var resp struct {
		Result any `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, float64(5), resp.Result)

	_, err = runCommand(t, "invoke", "--config-path", dir, "--log-level", "error", "fixture", "fail")
	var invocation *InvocationError
	require.ErrorAs(t, err, &invocation)
	assert.Equal(t, api.CodeInternalError, invocation.Code)
	assert.Equal(t, "fixture failure", invocation.Message)
	assert.Equal(t, ExitCodeError, getExitCode(err))

	assert.Equal(t, int64(2), fixture.Calls())
}

func TestInvokeCommand_InvalidPayload(t *testing.T) {
	dir, fixture := fixtureProfile(t)

	_, err := runCommand(t, "invoke", "--config-path", dir, "fixture", "echo", "[1, 2]")
	assert.True(t, api.IsInvalidPayload(err))
	assert.Zero(t, fixture.Calls())
}

func TestInvokeCommand_UnknownProfile(t *testing.T) {
	_, err := runCommand(t, "invoke", "--config-path", t.TempDir(), "--log-level", "error", "missing", "echo")
	assert.True(t, api.IsNotFound(err))
}

func TestInvokeCommand_Unreachable(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "profiles", "add", "--config-path", dir,
		"--id", "down", "--name", "Down", "--type", "http",
		"--base-url", "http://127.0.0.1:1/mcp", "--transport", "streamable-http")
	require.NoError(t, err)

	_, err = runCommand(t, "invoke", "--config-path", dir, "--log-level", "error", "down", "echo")
	require.Error(t, err)
	assert.Equal(t, ExitCodeNotConnected, getExitCode(err))
}
