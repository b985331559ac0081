package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/bridge"
)

// commandExecutionTimeout bounds a single command, long enough for slow tool calls.
const commandExecutionTimeout = 5 * time.Minute

// completionTimeout bounds the service discovery done for tab completion.
const completionTimeout = 3 * time.Second

const historyFileName = ".mcpdesk_history"

// Subscriber is the consumer side of the event bus.
type Subscriber interface {
	Subscribe(types ...api.EventType) (<-chan api.Event, func())
}

// Options configure a REPL.
type Options struct {
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Spinner shows a spinner while connecting.
	Spinner bool
	// HistoryFile overrides the readline history location.
	HistoryFile string
}

// REPL is the interactive console. Every command goes through the bridge,
// so the console can do exactly what the HTTP surface can.
type REPL struct {
	bridge   *bridge.Bridge
	events   Subscriber
	out      *Output
	registry *Registry
	spinner  bool
	history  string

	mu       sync.Mutex
	rl       *readline.Instance
}

// New creates a REPL over b. events may be nil, in which case process
// output is not echoed.
func New(b *bridge.Bridge, events Subscriber, opts Options) *REPL {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	history := opts.HistoryFile
	if history == "" {
		history = filepath.Join(os.TempDir(), historyFileName)
	}

	r := &REPL{
		bridge:   b,
		events:   events,
		out:      NewOutput(out),
		registry: NewRegistry(),
		spinner:  opts.Spinner,
		history:  history,
	}
	r.registerCommands()
	return r
}

// Execute runs one command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	name, raw, _ := strings.Cut(line, " ")
	cmd, ok := r.registry.Get(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", name)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandExecutionTimeout)
	defer cancel()

	raw = strings.TrimSpace(raw)
	return cmd.Execute(cmdCtx, Input{Args: strings.Fields(raw), Raw: raw})
}

// Run reads and executes commands until exit, EOF or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              r.prompt(),
		HistoryFile:         r.history,
		AutoComplete:        r.createCompleter(ctx),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		Stdout:              r.out.Writer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	r.mu.Lock()
	r.rl = rl
	r.mu.Unlock()

	var wg sync.WaitGroup
	listenCtx, stopListening := context.WithCancel(ctx)
	defer func() {
		stopListening()
		wg.Wait()
	}()
	if r.events != nil {
		events, unsubscribe := r.events.Subscribe(api.EventServerOutput, api.EventServerExit, api.EventSessionState, api.EventProfilesChanged)
		defer unsubscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.eventListener(listenCtx, events)
		}()
	}

	r.out.Info("mcpdesk console. Type 'help' for available commands. Use TAB for completion.")

	// Readline blocks, so closing it is the only way to interrupt a pending read.
	go func() {
		<-listenCtx.Done()
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			r.out.Info("Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if err := r.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				r.out.Info("Goodbye!")
				return nil
			}
			r.out.Error("Error: %v", err)
		}
		r.updatePrompt()
	}
}

// eventListener prints asynchronous events above the prompt.
func (r *REPL) eventListener(ctx context.Context, events <-chan api.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.mu.Lock()
			rl := r.rl
			r.mu.Unlock()
			if rl != nil {
				_, _ = rl.Stdout().Write([]byte("\r\033[K"))
			}
			r.printEvent(ev)
			switch ev.Type {
			case api.EventSessionState:
				r.updatePrompt()
			case api.EventProfilesChanged:
				r.refreshCompleter(ctx)
			}
			if rl != nil {
				rl.Refresh()
			}
		}
	}
}

func (r *REPL) printEvent(ev api.Event) {
	switch ev.Type {
	case api.EventServerOutput:
		prefix := fmt.Sprintf("[%s]", shortID(ev.ID))
		for _, line := range strings.Split(strings.TrimRight(ev.Data, "\n"), "\n") {
			if ev.Stream == api.StreamStderr {
				r.out.Warn("%s %s", prefix, line)
			} else {
				r.out.Line("%s %s", prefix, line)
			}
		}
	case api.EventServerExit:
		if ev.Code == nil {
			r.out.Info("[%s] exited (killed)", shortID(ev.ID))
		} else {
			r.out.Info("[%s] exited with code %d", shortID(ev.ID), *ev.Code)
		}
	case api.EventProfilesChanged:
		r.out.Info("Server profiles changed on disk")
	case api.EventSessionState:
		if ev.Error != "" {
			r.out.Warn("session %s: %s", ev.State, ev.Error)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (r *REPL) prompt() string {
	status := r.bridge.Status()
	if status.State == api.StateConnected {
		return fmt.Sprintf("mcpdesk %s > ", status.ProfileID)
	}
	return "mcpdesk > "
}

func (r *REPL) updatePrompt() {
	r.mu.Lock()
	rl := r.rl
	r.mu.Unlock()
	if rl != nil {
		rl.SetPrompt(r.prompt())
	}
}

// refreshCompleter rebuilds tab completion after profiles or the session change.
func (r *REPL) refreshCompleter(ctx context.Context) {
	r.mu.Lock()
	rl := r.rl
	r.mu.Unlock()
	if rl != nil {
		rl.Config.AutoComplete = r.createCompleter(ctx)
	}
}

func (r *REPL) createCompleter(ctx context.Context) readline.AutoCompleter {
	var profileItems []readline.PrefixCompleterInterface
	if profiles, err := r.bridge.GetServerConfigs(); err == nil {
		for _, p := range profiles {
			profileItems = append(profileItems, readline.PcItem(p.ID))
		}
	}

	var serviceItems []readline.PrefixCompleterInterface
	if r.bridge.Status().State == api.StateConnected {
		listCtx, cancel := context.WithTimeout(ctx, completionTimeout)
		services, err := r.bridge.ListServices(listCtx)
		cancel()
		if err == nil {
			for _, s := range services {
				serviceItems = append(serviceItems, readline.PcItem(s.ID))
			}
		}
	}

	var commandItems []readline.PrefixCompleterInterface
	for _, name := range r.registry.List() {
		commandItems = append(commandItems, readline.PcItem(name))
	}

	var kinds []readline.PrefixCompleterInterface
	for _, k := range []api.ConnectionKind{api.KindHTTP, api.KindCommand, api.KindPackage} {
		kinds = append(kinds, readline.PcItem(string(k)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("help", commandItems...),
		readline.PcItem("exit"),
		readline.PcItem("profiles"),
		readline.PcItem("add", kinds...),
		readline.PcItem("remove", profileItems...),
		readline.PcItem("connect", profileItems...),
		readline.PcItem("disconnect"),
		readline.PcItem("services"),
		readline.PcItem("describe", serviceItems...),
		readline.PcItem("invoke", serviceItems...),
		readline.PcItem("start", profileItems...),
		readline.PcItem("stop"),
		readline.PcItem("ps"),
		readline.PcItem("theme", readline.PcItem(string(api.ThemeLight)), readline.PcItem(string(api.ThemeDark))),
		readline.PcItem("language", readline.PcItem(string(api.LanguageEnglish)), readline.PcItem(string(api.LanguageChinese))),
		readline.PcItem("status"),
	)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
