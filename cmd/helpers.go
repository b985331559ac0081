package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/app"
	"github.com/mcpdesk/mcpdesk/internal/config"
	"github.com/mcpdesk/mcpdesk/internal/profile"
)

// Output formats of the one-shot commands.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// InvocationError is returned by invoke when the server reported an error,
// so that the process exits non-zero.
type InvocationError struct {
	Code    int
	Message string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation failed (%d): %s", e.Code, e.Message)
}

// commandContext returns the command's context, tolerating commands run
// without one (as in tests calling RunE directly).
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func commandOutput(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}

// newApplication bootstraps the application from the global flags.
func newApplication() (*app.Application, error) {
	dir, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	application, err := app.NewApplication(app.NewConfig(dir, logLevel, GetVersion()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// openStore opens the profile store without starting any services.
func openStore() (*profile.Store, error) {
	dir, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return profile.NewStoreWithPath(dir), nil
}

func validateOutputFormat(format string) error {
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unsupported output format %q (use %s or %s)", format, outputTable, outputJSON)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
