package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/console"
	"github.com/mcpdesk/mcpdesk/internal/session"
)

var (
	invokeMethod string
	invokeOutput string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <profile-id> <service-id> [json]",
	Short: "Invoke a service once",
	Long: `Connects to the server of the given profile, invokes one service with JSON
parameters and disconnects. The parameters must be a JSON object; omit them
to send {}.

Examples:
  mcpdesk invoke local echo '{"message": "hello"}'
  mcpdesk invoke local math --method add '{"a": 2, "b": 3}'

Exits with code 2 when the server could not be reached.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runInvoke,
}

func runInvoke(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(invokeOutput); err != nil {
		return err
	}
	payload := ""
	if len(args) == 3 {
		payload = args[2]
	}
	// Reject malformed parameters before starting anything.
	params, err := session.ParseParams(payload)
	if err != nil {
		return err
	}

	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	return withSession(cmd, application, args[0], func() error {
		resp := application.Services().Bridge.InvokeService(commandContext(cmd), args[1], invokeMethod, params)

		out := commandOutput(cmd)
		if invokeOutput == outputJSON {
			if err := writeJSON(out, resp); err != nil {
				return err
			}
		} else {
			console.RenderResponse(console.NewOutput(out), resp)
		}

		if resp.Error != nil {
			return &InvocationError{Code: resp.Error.Code, Message: resp.Error.Message}
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().StringVar(&invokeMethod, "method", "", "Method of the service; the tool called is <service-id>.<method>")
	invokeCmd.Flags().StringVarP(&invokeOutput, "output", "o", outputTable, "Output format: table or json")
}
