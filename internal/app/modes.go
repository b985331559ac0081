package app

import (
	"context"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/bridge"
	"github.com/mcpdesk/mcpdesk/internal/console"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// Serve runs the HTTP control surface on the configured listen address until
// ctx is cancelled or the window is closed.
func (a *Application) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.config.Desk.Server.Listen)
	if err != nil {
		logging.Error("App", err, "Failed to listen on %s", a.config.Desk.Server.Listen)
		return err
	}
	return a.ServeListener(ctx, listener)
}

// ServeListener is Serve on an existing listener.
func (a *Application) ServeListener(ctx context.Context, listener net.Listener) error {
	ctx, cancel := a.runContext(ctx)
	defer cancel()

	if err := a.services.Profiles.Watch(ctx, a.services.Bus); err != nil {
		logging.Warn("App", "Settings file watching disabled: %v", err)
	}

	server := bridge.NewServer(a.services.Bridge, a.services.Bus, a.config.Desk.Server.AllowedOrigins)
	lifecycle, unsubscribe := a.services.Bus.Subscribe(api.EventServerExit, api.EventSessionState, api.EventProfilesChanged)
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, listener)
	})
	g.Go(func() error {
		logLifecycle(gctx, lifecycle)
		return nil
	})
	err := g.Wait()

	logging.Info("App", "Shutting down")
	a.services.Close()
	return err
}

// Console runs the interactive console until exit, EOF, ctx cancellation or
// window close.
func (a *Application) Console(ctx context.Context, opts console.Options) error {
	ctx, cancel := a.runContext(ctx)
	defer cancel()

	if err := a.services.Profiles.Watch(ctx, a.services.Bus); err != nil {
		logging.Warn("App", "Settings file watching disabled: %v", err)
	}

	repl := console.New(a.services.Bridge, a.services.Bus, opts)
	err := repl.Run(ctx)

	a.services.Close()
	return err
}

// logLifecycle logs process exits and session changes while serving, since
// no console is attached to show them.
func logLifecycle(ctx context.Context, events <-chan api.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case api.EventServerExit:
				if ev.Code == nil {
					logging.Info("App", "Process %s was killed", ev.ID)
				} else {
					logging.Info("App", "Process %s exited with code %d", ev.ID, *ev.Code)
				}
			case api.EventSessionState:
				if ev.Error != "" {
					logging.Warn("App", "Session %s (%s): %s", ev.State, ev.ID, ev.Error)
				} else {
					logging.Info("App", "Session %s (%s)", ev.State, ev.ID)
				}
			case api.EventProfilesChanged:
				logging.Info("App", "Server profiles changed on disk")
			}
		}
	}
}

// runContext derives a context that is also cancelled by a window close.
func (a *Application) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-a.services.Closed():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// SetListenAddress overrides the configured listen address.
func (a *Application) SetListenAddress(addr string) {
	a.config.Desk.Server.Listen = addr
}
