package console

import (
	"context"
	"sort"
)

// Input is a parsed command line. Args are the whitespace-separated words
// after the command name; Raw is the unsplit remainder, for commands whose
// last argument may contain spaces.
type Input struct {
	Args []string
	Raw  string
}

// Command is a console command.
type Command interface {
	Execute(ctx context.Context, in Input) error
	Usage() string
	Description() string
	Aliases() []string
}

// Registry resolves command names and aliases.
type Registry struct {
	byName map[string]Command
	// lookup maps names and aliases to the primary name
	lookup map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]Command{},
		lookup: map[string]string{},
	}
}

// Register adds cmd under name and its aliases. A later registration of the
// same alias wins.
func (r *Registry) Register(name string, cmd Command) {
	r.byName[name] = cmd
	r.lookup[name] = name
	for _, alias := range cmd.Aliases() {
		r.lookup[alias] = name
	}
}

// Get finds a command by name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	primary, ok := r.lookup[name]
	if !ok {
		return nil, false
	}
	cmd, ok := r.byName[primary]
	return cmd, ok
}

// List returns the primary names in order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
