package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/console"
)

var (
	profilesOutput string

	addID             string
	addName           string
	addType           string
	addBaseURL        string
	addTransport      string
	addCommand        string
	addPackageManager string
	addPackageName    string
	addArgs           []string
	addEnv            []string
)

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Manage stored server profiles",
	Long: `Manage the server profiles stored in settings.yaml.

A profile is one of three types:
  http      a network endpoint reached over SSE (default) or streamable HTTP
  command   a command line spawned as a child process speaking stdio
  package   a package launched through npx, bun or uvx`,
}

var profilesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored server profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfilesList,
}

var profilesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server profile",
	Long: `Add a server profile. The type cannot be changed afterwards; remove the
profile and add a new one instead.

Examples:
  mcpdesk profiles add --name Remote --type http --base-url http://localhost:3000/sse
  mcpdesk profiles add --name Files --type command --command "node server.js"
  mcpdesk profiles add --name Demo --type package --package demo-server --arg --verbose`,
	Args: cobra.NoArgs,
	RunE: runProfilesAdd,
}

var profilesRemoveCmd = &cobra.Command{
	Use:     "remove <profile-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a server profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfilesRemove,
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(profilesOutput); err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	profiles, err := store.List()
	if err != nil {
		return err
	}

	if profilesOutput == outputJSON {
		return writeJSON(commandOutput(cmd), profiles)
	}
	console.RenderProfiles(console.NewOutput(commandOutput(cmd)), profiles, "")
	return nil
}

func runProfilesAdd(cmd *cobra.Command, args []string) error {
	env, err := parseEnv(addEnv)
	if err != nil {
		return err
	}
	p := api.ServerProfile{
		ID:   addID,
		Name: addName,
		Kind: api.ConnectionKind(addType),
		Config: api.ServerConfig{
			BaseURL:        addBaseURL,
			Transport:      api.NetworkTransport(addTransport),
			Command:        addCommand,
			PackageManager: api.PackageManager(addPackageManager),
			PackageName:    addPackageName,
			Args:           addArgs,
			Env:            env,
		},
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	stored, err := store.Add(p)
	if err != nil {
		return err
	}
	console.NewOutput(commandOutput(cmd)).Success("Added %s (%s)", stored.Name, stored.ID)
	return nil
}

func runProfilesRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Remove(args[0]); err != nil {
		return err
	}
	console.NewOutput(commandOutput(cmd)).Success("Removed %s", args[0])
	return nil
}

// parseEnv turns KEY=VALUE pairs into a map.
func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesAddCmd, profilesRemoveCmd)

	profilesListCmd.Flags().StringVarP(&profilesOutput, "output", "o", outputTable, "Output format: table or json")

	profilesAddCmd.Flags().StringVar(&addID, "id", "", "Profile id (generated when empty)")
	profilesAddCmd.Flags().StringVar(&addName, "name", "", "Display name")
	profilesAddCmd.Flags().StringVar(&addType, "type", "", "Profile type: http, command or package")
	profilesAddCmd.Flags().StringVar(&addBaseURL, "base-url", "", "Endpoint of an http profile")
	profilesAddCmd.Flags().StringVar(&addTransport, "transport", "", "Transport of an http profile: sse or streamable-http")
	profilesAddCmd.Flags().StringVar(&addCommand, "command", "", "Command line of a command profile")
	profilesAddCmd.Flags().StringVar(&addPackageManager, "package-manager", "", "Launcher of a package profile: npx, bun or uvx")
	profilesAddCmd.Flags().StringVar(&addPackageName, "package", "", "Package of a package profile")
	profilesAddCmd.Flags().StringArrayVar(&addArgs, "arg", nil, "Extra argument after the package name (repeatable)")
	profilesAddCmd.Flags().StringArrayVar(&addEnv, "env", nil, "Environment variable KEY=VALUE for spawned servers (repeatable)")
	_ = profilesAddCmd.MarkFlagRequired("name")
	_ = profilesAddCmd.MarkFlagRequired("type")
}
