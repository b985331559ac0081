package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/app"
	"github.com/mcpdesk/mcpdesk/internal/console"
)

var servicesOutput string

var servicesCmd = &cobra.Command{
	Use:   "services <profile-id> [service-id]",
	Short: "List the services of a server, or describe one",
	Long: `Connects to the server of the given profile, lists the services (tools) it
exposes and disconnects. With a service id, shows that service's detail.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runServices,
}

func runServices(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(servicesOutput); err != nil {
		return err
	}
	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	return withSession(cmd, application, args[0], func() error {
		ctx := commandContext(cmd)
		b := application.Services().Bridge
		out := commandOutput(cmd)

		if len(args) == 2 {
			detail, err := b.DescribeService(ctx, args[1])
			if err != nil {
				return err
			}
			if servicesOutput == outputJSON {
				return writeJSON(out, detail)
			}
			console.RenderServiceDetail(console.NewOutput(out), detail)
			return nil
		}

		services, err := b.ListServices(ctx)
		if err != nil {
			return err
		}
		if servicesOutput == outputJSON {
			return writeJSON(out, services)
		}
		console.RenderServices(console.NewOutput(out), services)
		return nil
	})
}

// withSession connects to profileID, runs fn and disconnects.
func withSession(cmd *cobra.Command, application *app.Application, profileID string, fn func() error) error {
	b := application.Services().Bridge
	if _, err := b.Connect(commandContext(cmd), profileID); err != nil {
		return err
	}
	defer func() { _, _ = b.Disconnect() }()
	return fn()
}

func init() {
	rootCmd.AddCommand(servicesCmd)

	servicesCmd.Flags().StringVarP(&servicesOutput, "output", "o", outputTable, "Output format: table or json")
}
