package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

// runCommand executes the root command with fresh flag values and returns
// what it wrote to stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	configPath, logLevel = "", ""
	profilesOutput, servicesOutput, invokeOutput = outputTable, outputTable, outputTable
	invokeMethod = ""
	addID, addName, addType, addBaseURL, addTransport = "", "", "", "", ""
	addCommand, addPackageManager, addPackageName = "", "", ""
	addArgs, addEnv = nil, nil
	serveListen = ""
	consoleNoSpinner = false
}

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "mcpdesk", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-path"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "mcpdesk version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "mcpdesk version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"version", "self-update", "serve", "console", "profiles", "services", "invoke"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "generic", err: errors.New("boom"), want: ExitCodeError},
		{name: "not connected", err: api.ErrNotConnected, want: ExitCodeNotConnected},
		{name: "wrapped not connected", err: fmt.Errorf("listing: %w", api.ErrNotConnected), want: ExitCodeNotConnected},
		{name: "connect failed", err: &api.ConnectFailedError{ProfileID: "p", Err: errors.New("refused")}, want: ExitCodeNotConnected},
		{name: "invocation not connected", err: &InvocationError{Code: api.CodeNotConnected, Message: "Not connected to MCP server"}, want: ExitCodeNotConnected},
		{name: "invocation failure", err: &InvocationError{Code: api.CodeInternalError, Message: "bad"}, want: ExitCodeError},
		{name: "not found", err: api.NewProfileNotFoundError("x"), want: ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}
