package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/api"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeNotConnected indicates no MCP session could be used.
	ExitCodeNotConnected = 2
)

var (
	// configPath is the directory holding config.yaml and settings.yaml.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string
)

// rootCmd represents the base command for the mcpdesk application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcpdesk",
	Short: "Desktop client for Model Context Protocol servers",
	Long: `mcpdesk keeps a set of MCP server profiles, connects to one server at a
time, lists the services (tools) it exposes and invokes them with JSON
parameters. It can spawn local servers from a command line or a package
manager, and offers both an interactive console and a local HTTP API.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpdesk version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if api.IsNotConnected(err) || api.IsConnectFailed(err) {
		return ExitCodeNotConnected
	}

	var invocation *InvocationError
	if errors.As(err, &invocation) && invocation.Code == api.CodeNotConnected {
		return ExitCodeNotConnected
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default $HOME/.config/mcpdesk)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config.yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
