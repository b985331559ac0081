package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/console"
)

var consoleNoSpinner bool

// consoleCmd runs the interactive console.
var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"repl"},
	Short:   "Start the interactive mcpdesk console",
	Long: `Starts an interactive console with tab completion and history.

Typical session:

  add http Local http://localhost:3000/sse
  connect <profile-id>
  services
  describe <service-id>
  invoke <service-id> [method] {"param": "value"}

Output of processes started with 'start' is printed as it arrives.
Type 'help' inside the console for all commands.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	// readline handles Ctrl+C itself.
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGTERM)
	defer stop()

	return application.Console(ctx, console.Options{
		Out:     os.Stdout,
		Spinner: !consoleNoSpinner,
	})
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().BoolVar(&consoleNoSpinner, "no-spinner", false, "Disable the spinner shown while connecting")
}
