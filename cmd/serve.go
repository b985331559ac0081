package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// serveListen overrides server.listen from config.yaml.
var serveListen string

// serveCmd starts the local HTTP control API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mcpdesk control API over HTTP",
	Long: `Starts the local HTTP control API that a browser or desktop shell uses to
drive mcpdesk:

  POST /api/{channel}   invoke an allow-listed channel with a JSON array of arguments
  GET  /api/events      stream process output, process exits and session changes (SSE)
  GET  /health          liveness probe

Browsers may only call the API from the origins in server.allowedOrigins.
The server runs until interrupted or until a client invokes window-close.
Every spawned server process is killed on shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := newApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	if serveListen != "" {
		application.SetListenAddress(serveListen)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Serve(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, 127.0.0.1:7410)")
}
