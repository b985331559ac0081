package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/bridge"
	"github.com/mcpdesk/mcpdesk/internal/session"
)

// errExit is returned by the exit command to end the loop.
var errExit = errors.New("exit")

// simpleCommand adapts a function to Command.
type simpleCommand struct {
	usage       string
	description string
	aliases     []string
	run         func(ctx context.Context, in Input) error
}

func (c *simpleCommand) Execute(ctx context.Context, in Input) error { return c.run(ctx, in) }
func (c *simpleCommand) Usage() string                               { return c.usage }
func (c *simpleCommand) Description() string                         { return c.description }
func (c *simpleCommand) Aliases() []string                           { return c.aliases }

func usageError(c Command) error {
	return fmt.Errorf("usage: %s", c.Usage())
}

func (r *REPL) registerCommands() {
	reg := r.registry

	reg.Register("help", &simpleCommand{
		usage:       "help",
		description: "Show available commands",
		aliases:     []string{"?"},
		run: func(ctx context.Context, in Input) error {
			t := newTable(r.out.Writer(), "COMMAND", "DESCRIPTION")
			for _, name := range reg.List() {
				cmd, _ := reg.Get(name)
				t.AppendRow([]interface{}{cmd.Usage(), cmd.Description()})
			}
			t.Render()
			return nil
		},
	})

	reg.Register("exit", &simpleCommand{
		usage:       "exit",
		description: "Leave the console",
		aliases:     []string{"quit", "q"},
		run:         func(ctx context.Context, in Input) error { return errExit },
	})

	reg.Register("profiles", &simpleCommand{
		usage:       "profiles",
		description: "List stored server profiles",
		aliases:     []string{"ls"},
		run: func(ctx context.Context, in Input) error {
			profiles, err := r.bridge.GetServerConfigs()
			if err != nil {
				return err
			}
			RenderProfiles(r.out, profiles, r.bridge.Status().ProfileID)
			return nil
		},
	})

	add := &simpleCommand{
		usage:       "add <http|command|package> <name> ...",
		description: "Add a server profile",
	}
	add.run = func(ctx context.Context, in Input) error {
		p, err := parseProfile(in.Args)
		if err != nil {
			if errors.Is(err, errBadUsage) {
				return usageError(add)
			}
			return err
		}
		profiles, err := r.bridge.SaveServerConfig(p)
		if err != nil {
			return err
		}
		r.out.Success("Added %s (%s)", profiles[len(profiles)-1].Name, profiles[len(profiles)-1].ID)
		r.refreshCompleter(ctx)
		return nil
	}
	reg.Register("add", add)

	remove := &simpleCommand{
		usage:       "remove <profile-id>",
		description: "Remove a server profile",
		aliases:     []string{"rm"},
	}
	remove.run = func(ctx context.Context, in Input) error {
		if len(in.Args) != 1 {
			return usageError(remove)
		}
		if _, err := r.bridge.RemoveServerConfig(in.Args[0]); err != nil {
			return err
		}
		r.out.Success("Removed %s", in.Args[0])
		r.refreshCompleter(ctx)
		return nil
	}
	reg.Register("remove", remove)

	connect := &simpleCommand{
		usage:       "connect <profile-id>",
		description: "Connect to a server, replacing the current session",
	}
	connect.run = func(ctx context.Context, in Input) error {
		if len(in.Args) != 1 {
			return usageError(connect)
		}
		stop := r.startSpinner(fmt.Sprintf(" Connecting to %s...", in.Args[0]))
		_, err := r.bridge.Connect(ctx, in.Args[0])
		stop()
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		r.out.Success("Connected to %s", in.Args[0])
		r.refreshCompleter(ctx)
		return nil
	}
	reg.Register("connect", connect)

	reg.Register("disconnect", &simpleCommand{
		usage:       "disconnect",
		description: "Close the current session",
		run: func(ctx context.Context, in Input) error {
			if _, err := r.bridge.Disconnect(); err != nil {
				return err
			}
			r.out.Success("Disconnected")
			return nil
		},
	})

	reg.Register("services", &simpleCommand{
		usage:       "services",
		description: "List services of the connected server",
		aliases:     []string{"tools"},
		run: func(ctx context.Context, in Input) error {
			services, err := r.bridge.ListServices(ctx)
			if err != nil {
				return err
			}
			RenderServices(r.out, services)
			return nil
		},
	})

	describe := &simpleCommand{
		usage:       "describe <service-id>",
		description: "Show a service and its tool calls",
	}
	describe.run = func(ctx context.Context, in Input) error {
		if len(in.Args) != 1 {
			return usageError(describe)
		}
		detail, err := r.bridge.DescribeService(ctx, in.Args[0])
		if err != nil {
			return err
		}
		RenderServiceDetail(r.out, detail)
		return nil
	}
	reg.Register("describe", describe)

	invoke := &simpleCommand{
		usage:       "invoke <service-id> [method] [json]",
		description: "Invoke a service with JSON parameters",
		aliases:     []string{"call"},
	}
	invoke.run = func(ctx context.Context, in Input) error {
		id, method, payload, ok := splitInvoke(in.Raw)
		if !ok {
			return usageError(invoke)
		}
		params, err := session.ParseParams(payload)
		if err != nil {
			return err
		}
		RenderResponse(r.out, r.bridge.InvokeService(ctx, id, method, params))
		return nil
	}
	reg.Register("invoke", invoke)

	start := &simpleCommand{
		usage:       "start <profile-id | command line>",
		description: "Start a server process and show its early output",
	}
	start.run = func(ctx context.Context, in Input) error {
		if len(in.Args) == 0 {
			return usageError(start)
		}
		res, err := r.startProcess(ctx, in)
		if err != nil {
			return err
		}
		r.out.Success("Started %s", res.ID)
		if res.Output != "" {
			r.out.Line("%s", strings.TrimRight(res.Output, "\n"))
		}
		return nil
	}
	reg.Register("start", start)

	stop := &simpleCommand{
		usage:       "stop <process-id>",
		description: "Stop a server process",
	}
	stop.run = func(ctx context.Context, in Input) error {
		if len(in.Args) != 1 {
			return usageError(stop)
		}
		res := r.bridge.StopCmdServer(in.Args[0])
		if !res.Success {
			return errors.New(res.Error)
		}
		r.out.Success("Stopped %s", in.Args[0])
		return nil
	}
	reg.Register("stop", stop)

	reg.Register("ps", &simpleCommand{
		usage:       "ps",
		description: "List running server processes",
		run: func(ctx context.Context, in Input) error {
			RenderProcesses(r.out, r.bridge.ListProcesses())
			return nil
		},
	})

	reg.Register("theme", &simpleCommand{
		usage:       "theme [light|dark]",
		description: "Show or set the UI theme",
		run: func(ctx context.Context, in Input) error {
			if len(in.Args) == 0 {
				theme, err := r.bridge.GetTheme()
				if err != nil {
					return err
				}
				r.out.Line("%s", theme)
				return nil
			}
			theme, err := r.bridge.SetTheme(api.Theme(in.Args[0]))
			if err != nil {
				return err
			}
			r.out.Success("Theme set to %s", theme)
			return nil
		},
	})

	reg.Register("language", &simpleCommand{
		usage:       "language [en|zh]",
		description: "Show or set the UI language",
		aliases:     []string{"lang"},
		run: func(ctx context.Context, in Input) error {
			if len(in.Args) == 0 {
				lang, err := r.bridge.GetLanguage()
				if err != nil {
					return err
				}
				r.out.Line("%s", lang)
				return nil
			}
			lang, err := r.bridge.SetLanguage(api.Language(in.Args[0]))
			if err != nil {
				return err
			}
			r.out.Success("Language set to %s", lang)
			return nil
		},
	})

	reg.Register("status", &simpleCommand{
		usage:       "status",
		description: "Show the connection state",
		run: func(ctx context.Context, in Input) error {
			status := r.bridge.Status()
			if status.ProfileID == "" {
				r.out.Line("%s", status.State)
				return nil
			}
			if err := r.bridge.Ping(ctx); err != nil {
				r.out.Line("%s to %s (not answering: %v)", status.State, status.ProfileID, err)
				return nil
			}
			r.out.Line("%s to %s", status.State, status.ProfileID)
			return nil
		},
	})
}

// startSpinner shows a spinner when enabled and returns its stop func.
func (r *REPL) startSpinner(suffix string) func() {
	if !r.spinner {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = r.out.Writer()
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

var errBadUsage = errors.New("bad usage")

// parseProfile builds a profile from add arguments.
func parseProfile(args []string) (api.ServerProfile, error) {
	if len(args) < 3 {
		return api.ServerProfile{}, errBadUsage
	}
	p := api.ServerProfile{Name: args[1], Kind: api.ConnectionKind(args[0])}
	rest := args[2:]

	switch p.Kind {
	case api.KindHTTP:
		if len(rest) > 2 {
			return api.ServerProfile{}, errBadUsage
		}
		p.Config.BaseURL = rest[0]
		if len(rest) == 2 {
			p.Config.Transport = api.NetworkTransport(rest[1])
		}
	case api.KindCommand:
		p.Config.Command = strings.Join(rest, " ")
	case api.KindPackage:
		if len(rest) < 2 {
			return api.ServerProfile{}, errBadUsage
		}
		p.Config.PackageManager = api.PackageManager(rest[0])
		p.Config.PackageName = rest[1]
		if len(rest) > 2 {
			p.Config.Args = rest[2:]
		}
	default:
		return api.ServerProfile{}, &api.UnsupportedKindError{Field: "type", Value: args[0]}
	}
	return p, nil
}

// splitInvoke splits "<id> [method] [json]". The JSON part starts at the
// first '{' so it may contain spaces.
func splitInvoke(raw string) (id, method, payload string, ok bool) {
	raw = strings.TrimSpace(raw)
	head := raw
	if i := strings.IndexByte(raw, '{'); i >= 0 {
		head, payload = raw[:i], raw[i:]
	}
	words := strings.Fields(head)
	switch len(words) {
	case 1:
		return words[0], "", payload, true
	case 2:
		return words[0], words[1], payload, true
	default:
		return "", "", "", false
	}
}

// startProcess starts the process of a stored profile, or a literal command line.
func (r *REPL) startProcess(ctx context.Context, in Input) (bridge.StartResult, error) {
	if len(in.Args) == 1 {
		if _, err := r.bridge.GetServerConfig(in.Args[0]); err == nil {
			return r.bridge.StartProfile(ctx, in.Args[0])
		}
	}
	return r.bridge.StartCmdServer(ctx, in.Raw, nil)
}
