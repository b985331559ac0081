// Package app provides application bootstrap and lifecycle management for mcpdesk.
//
// # Architecture Overview
//
// The app package wires the core components together:
//
//  1. **Bootstrap (`bootstrap.go`)**: loads config.yaml, configures logging and
//     builds the services
//  2. **Configuration (`config.go`)**: runtime options coming from the command line
//  3. **Services (`services.go`)**: the event bus, process registry, profile
//     store, session manager and bridge
//  4. **Modes (`modes.go`)**: the HTTP server mode and the interactive console
//
// # Shutdown
//
// Both modes end when the context is cancelled or the bridge's window is
// closed. On the way out every spawned process is killed and the active
// session is closed.
//
// # Usage
//
//	cfg := app.NewConfig(configPath, "debug", version)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
//	return application.Serve(ctx)
package app
